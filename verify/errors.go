// Package verify composes the extractor, sign-state, and evaluator into the
// top-level authorization check, and defines the structured error type every
// failure kind surfaces as.
//
// The error shape is grounded on the teacher's src/chainadapter/error.go
// (Code/Message/Cause) merged with the pack's protocol-level typed error
// convention; the retry-classification axis of the teacher's version is
// dropped since a synchronous in-memory evaluator has nothing to retry.
package verify

import (
	"errors"
	"fmt"

	"github.com/arcledger/authcore/authority"
	"github.com/arcledger/authcore/chainstate"
)

// Code identifies one of the fixed failure kinds of §7.
type Code string

// The failure kinds of spec §7.
const (
	CodeEmptyTransaction       Code = "empty_transaction"
	CodeOperationInvalid       Code = "operation_invalid"
	CodeDuplicateSignature     Code = "duplicate_signature"
	CodeMissingActiveAuth      Code = "missing_active_auth"
	CodeMissingOwnerAuth       Code = "missing_owner_auth"
	CodeMissingOtherAuth       Code = "missing_other_auth"
	CodeIrrelevantSignature    Code = "irrelevant_signature"
	CodeInvalidCommitteeApproval Code = "invalid_committee_approval"
)

// AuthError is the structured error every verification or minimization
// failure surfaces as: a stable Code, a human Message, contextual payload,
// and an optional wrapped Cause.
type AuthError struct {
	Code    Code
	Message string
	Context map[string]any
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("verify: %s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("verify: %s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *AuthError) Unwrap() error { return e.Cause }

func newError(code Code, message string) *AuthError {
	return &AuthError{Code: code, Message: message, Context: map[string]any{}}
}

func errEmptyTransaction() *AuthError {
	return newError(CodeEmptyTransaction, "transaction has no operations")
}

func errOperationInvalid(cause error) *AuthError {
	e := newError(CodeOperationInvalid, "operation rejected by extractor")
	e.Cause = cause
	return e
}

func errDuplicateSignature(cause error) *AuthError {
	e := newError(CodeDuplicateSignature, "two signatures recovered to the same key")
	e.Cause = cause
	return e
}

func errMissingActiveAuth(account authority.AccountID) *AuthError {
	e := newError(CodeMissingActiveAuth, fmt.Sprintf("account %d's active authority is unsatisfied", account))
	e.Context["account"] = account
	return e
}

func errMissingOwnerAuth(account authority.AccountID) *AuthError {
	e := newError(CodeMissingOwnerAuth, fmt.Sprintf("account %d's owner authority is unsatisfied", account))
	e.Context["account"] = account
	return e
}

func errMissingOtherAuth(auth authority.Authority) *AuthError {
	e := newError(CodeMissingOtherAuth, "a loose authority demanded by an operation is unsatisfied")
	e.Context["authority"] = auth
	return e
}

func errIrrelevantSignature() *AuthError {
	return newError(CodeIrrelevantSignature, "at least one provided signature was not consumed")
}

func errInvalidCommitteeApproval(account authority.AccountID) *AuthError {
	e := newError(CodeInvalidCommitteeApproval, "committee account appeared in required active authority")
	e.Context["account"] = account
	return e
}

// IsMissingAuthError reports whether err is one of the three "missing auth"
// kinds the minimizer treats as a negative answer ("this subset is
// insufficient") rather than a propagated failure.
func IsMissingAuthError(err error) bool {
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		return false
	}
	switch authErr.Code {
	case CodeMissingActiveAuth, CodeMissingOwnerAuth, CodeMissingOtherAuth:
		return true
	default:
		return false
	}
}

// RejectedMap is re-exported for callers that only import verify.
type RejectedMap = chainstate.RejectedMap
