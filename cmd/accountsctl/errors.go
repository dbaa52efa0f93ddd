package main

import "errors"

var (
	ErrMissingCommand   = errors.New("missing command")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidFlag      = errors.New("invalid flag provided")
	ErrMissingArgument  = errors.New("missing required argument")
	ErrTooManyArguments = errors.New("too many arguments")
	ErrLoadEnv          = errors.New("failed to load env file")
	ErrLoadConfig       = errors.New("failed to load config")
	ErrOpenStore        = errors.New("failed to open store")
	ErrWriteOutput      = errors.New("failed to write output")
	ErrFileExists       = errors.New("file already exists")
	ErrUnknownHelpTopic = errors.New("unknown help topic")
)
