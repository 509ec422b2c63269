package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

var (
	// ErrorExecutionNotPending is returned when an approval or state
	// transition targets an execution that is already terminal.
	ErrorExecutionNotPending = errors.New("execution is not pending")

	// ErrorTemplateClaimed is returned when another trigger has already
	// claimed the template for the same occurrence.
	ErrorTemplateClaimed = errors.New("template already claimed")

	ErrorUnsupportedDocumentType = errors.New("unsupported document type")
)

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
