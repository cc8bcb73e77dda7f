package sqlite

import "fmt"

const (
	errUserNotFound    = "user not found"
	errProfileNotFound = "profile not found"
	errTaskNotFound    = "task not found"
	errUsernameTaken   = "a user with this username already exists"

	errFailedOpenDatabaseFmt  = "failed to open sqlite database: %w"
	errFailedPingDatabaseFmt  = "failed to ping database: %w"
	errFailedMigrateFmt       = "failed to migrate schema: %w"
	errFailedCreateUserFmt    = "failed to create user: %w"
	errFailedGetUserFmt       = "failed to get user: %w"
	errFailedCreateProfileFmt = "failed to create profile: %w"
	errFailedGetProfileFmt    = "failed to get profile: %w"
	errFailedListProfilesFmt  = "failed to list profiles: %w"
	errFailedUpdateProfileFmt = "failed to update profile: %w"
	errFailedCreateTaskFmt    = "failed to create task: %w"
	errFailedGetTaskFmt       = "failed to get task: %w"
	errFailedListTasksFmt     = "failed to list tasks: %w"
	errFailedUpdateTaskFmt    = "failed to update task: %w"
)

var (
	errFailedCreateProfile = func(err error) error { return fmt.Errorf(errFailedCreateProfileFmt, err) }
	errFailedCreateTask    = func(err error) error { return fmt.Errorf(errFailedCreateTaskFmt, err) }
	errFailedCreateUser    = func(err error) error { return fmt.Errorf(errFailedCreateUserFmt, err) }
	errFailedGetProfile    = func(err error) error { return fmt.Errorf(errFailedGetProfileFmt, err) }
	errFailedGetTask       = func(err error) error { return fmt.Errorf(errFailedGetTaskFmt, err) }
	errFailedGetUser       = func(err error) error { return fmt.Errorf(errFailedGetUserFmt, err) }
	errFailedListProfiles  = func(err error) error { return fmt.Errorf(errFailedListProfilesFmt, err) }
	errFailedListTasks     = func(err error) error { return fmt.Errorf(errFailedListTasksFmt, err) }
	errFailedMigrate       = func(err error) error { return fmt.Errorf(errFailedMigrateFmt, err) }
	errFailedOpenDatabase  = func(err error) error { return fmt.Errorf(errFailedOpenDatabaseFmt, err) }
	errFailedPingDatabase  = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedUpdateProfile = func(err error) error { return fmt.Errorf(errFailedUpdateProfileFmt, err) }
	errFailedUpdateTask    = func(err error) error { return fmt.Errorf(errFailedUpdateTaskFmt, err) }
)
