package domain

type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultValidationFailure
	ResultAuthorizationFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultValidationFailure:
		return "validation_failure"
	case ResultAuthorizationFailure:
		return "authorization_failure"
	default:
		return "unknown"
	}
}

// OperationResult is the outcome of one use case call. Only the fields of Kind are set.
type OperationResult struct {
	Kind        ResultKind
	Message     string
	Payload     interface{}
	FieldErrors map[string]string
	Reason      string
}

func Success(message string, payload interface{}) *OperationResult {
	return &OperationResult{Kind: ResultSuccess, Message: message, Payload: payload}
}

func ValidationFailure(fieldErrors map[string]string) *OperationResult {
	return &OperationResult{Kind: ResultValidationFailure, FieldErrors: fieldErrors}
}

func AuthorizationFailure(reason string) *OperationResult {
	return &OperationResult{Kind: ResultAuthorizationFailure, Reason: reason}
}

func (r *OperationResult) IsSuccess() bool {
	return r != nil && r.Kind == ResultSuccess
}
