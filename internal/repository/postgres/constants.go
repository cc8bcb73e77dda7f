package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	errUserNotFound    = "user not found"
	errProfileNotFound = "profile not found"
	errTaskNotFound    = "task not found"
	errUsernameTaken   = "a user with this username already exists"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"
	errFailedApplySchemaFmt          = "failed to apply schema: %w"
	errFailedVerifyTableFmt          = "failed to verify table %s: %w"
	errMissingTableFmt               = "table %s missing after migration"

	errFailedStartTransactionFmt  = "failed to start transaction: %w"
	errFailedCommitTransactionFmt = "failed to commit transaction: %w"

	errFailedCreateUserFmt = "failed to create user: %w"
	errFailedGetUserFmt    = "failed to get user: %w"

	errFailedGetProfileFmt    = "failed to get profile: %w"
	errFailedCreateProfileFmt = "failed to create profile: %w"
	errFailedListProfilesFmt  = "failed to list profiles: %w"
	errFailedScanProfileFmt   = "failed to scan profile: %w"
	errIterateProfilesFmt     = "error iterating profiles: %w"
	errFailedUpdateProfileFmt = "failed to update profile: %w"

	errFailedCreateTaskFmt = "failed to create task: %w"
	errFailedGetTaskFmt    = "failed to get task: %w"
	errFailedListTasksFmt  = "failed to list tasks: %w"
	errFailedScanTaskFmt   = "failed to scan task: %w"
	errIterateTasksFmt     = "error iterating tasks: %w"
	errFailedUpdateTaskFmt = "failed to update task: %w"
)

var (
	errFailedApplySchema          = func(err error) error { return fmt.Errorf(errFailedApplySchemaFmt, err) }
	errFailedCommitTransaction    = func(err error) error { return fmt.Errorf(errFailedCommitTransactionFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedCreateProfile        = func(err error) error { return fmt.Errorf(errFailedCreateProfileFmt, err) }
	errFailedCreateTask           = func(err error) error { return fmt.Errorf(errFailedCreateTaskFmt, err) }
	errFailedCreateUser           = func(err error) error { return fmt.Errorf(errFailedCreateUserFmt, err) }
	errFailedGetProfile           = func(err error) error { return fmt.Errorf(errFailedGetProfileFmt, err) }
	errFailedGetTask              = func(err error) error { return fmt.Errorf(errFailedGetTaskFmt, err) }
	errFailedGetUser              = func(err error) error { return fmt.Errorf(errFailedGetUserFmt, err) }
	errFailedListProfiles         = func(err error) error { return fmt.Errorf(errFailedListProfilesFmt, err) }
	errFailedListTasks            = func(err error) error { return fmt.Errorf(errFailedListTasksFmt, err) }
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedScanProfile          = func(err error) error { return fmt.Errorf(errFailedScanProfileFmt, err) }
	errFailedScanTask             = func(err error) error { return fmt.Errorf(errFailedScanTaskFmt, err) }
	errFailedStartTransaction     = func(err error) error { return fmt.Errorf(errFailedStartTransactionFmt, err) }
	errFailedUpdateProfile        = func(err error) error { return fmt.Errorf(errFailedUpdateProfileFmt, err) }
	errFailedUpdateTask           = func(err error) error { return fmt.Errorf(errFailedUpdateTaskFmt, err) }
	errIterateProfiles            = func(err error) error { return fmt.Errorf(errIterateProfilesFmt, err) }
	errIterateTasks               = func(err error) error { return fmt.Errorf(errIterateTasksFmt, err) }
)
