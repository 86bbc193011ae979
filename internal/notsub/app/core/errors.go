package core

import "errors"

var (
	ErrParseCmd = errors.New("cannot parse arguments")
	ErrHelp     = errors.New("")

	ErrRMQConn = errors.New("rabbitmq connection failure")
	ErrMBCh    = errors.New("message broker channel failure")

	ErrUnknownEvent = errors.New("unknown event")
)
