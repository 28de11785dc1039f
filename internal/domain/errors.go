package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifica falhas de análise em três categorias estáveis.
// Toda falha que atravessa a fronteira de um integrador chega ao
// orquestrador já classificada em um desses tipos.
type ErrorKind string

const (
	// ErrorKindValidation indica parâmetros malformados do chamador;
	// nunca é retentada automaticamente
	ErrorKindValidation ErrorKind = "validation"
	// ErrorKindAuth indica credencial ausente, escopo faltando ou token
	// expirado/inválido confirmado pelo fornecedor; o remédio é reconectar
	ErrorKindAuth ErrorKind = "auth"
	// ErrorKindVendor indica falha upstream por outros motivos
	// (rate limit, resposta malformada, timeout, job que falhou)
	ErrorKindVendor ErrorKind = "vendor"
)

// Motivos distintos dentro de cada categoria, usados pelo verificador de
// status para decidir entre warning e error sem reparsear mensagens
const (
	ReasonTokenExpired = "token_expired"
	ReasonPermission   = "permission"
	ReasonTimeout      = "timeout"
)

// AnalysisError é o erro classificado que os integradores devolvem.
// Err carrega o erro bruto do fornecedor apenas para log; Message é o
// texto seguro para o chamador.
type AnalysisError struct {
	Kind    ErrorKind
	Service Service
	Reason  string
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Timeout informa se o erro representa o sub-caso distinto de timeout
func (e *AnalysisError) Timeout() bool {
	return e.Reason == ReasonTimeout
}

func NewValidationError(service Service, message string) *AnalysisError {
	return &AnalysisError{Kind: ErrorKindValidation, Service: service, Message: message}
}

func NewAuthError(service Service, reason, message string, err error) *AnalysisError {
	return &AnalysisError{Kind: ErrorKindAuth, Service: service, Reason: reason, Message: message, Err: err}
}

func NewVendorError(service Service, message string, err error) *AnalysisError {
	return &AnalysisError{Kind: ErrorKindVendor, Service: service, Message: message, Err: err}
}

func NewTimeoutError(service Service, message string, err error) *AnalysisError {
	return &AnalysisError{Kind: ErrorKindVendor, Service: service, Reason: ReasonTimeout, Message: message, Err: err}
}

// AsAnalysisError extrai um AnalysisError da cadeia de erros, se houver
func AsAnalysisError(err error) (*AnalysisError, bool) {
	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return analysisErr, true
	}
	return nil, false
}
