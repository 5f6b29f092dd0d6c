package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors classifying every failure the services surface. Handlers
// map them onto HTTP statuses with errors.Is; the message after the sentinel
// tells the operator what corrective action applies (missing justification vs
// wrong state vs not allowed need different reactions at the register).
var (
	ErrValidacao     = errors.New("dados invalidos")
	ErrPrecondicao   = errors.New("operacao nao permitida no estado atual")
	ErrNaoEncontrado = errors.New("registro nao encontrado")
	ErrPermissao     = errors.New("permissao insuficiente")
	// ErrTransiente signals store contention/timeouts: nothing was applied and
	// the caller should retry the whole operation.
	ErrTransiente = errors.New("falha transitoria no banco, tente novamente")
)

func validacao(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidacao, fmt.Sprintf(format, args...))
}

func precondicao(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPrecondicao, fmt.Sprintf(format, args...))
}

func naoEncontrado(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNaoEncontrado, fmt.Sprintf(format, args...))
}

// traduzErroBanco converts store errors into the service taxonomy.
// Serialization conflicts and deadlocks (SQLSTATE 40001/40P01) become
// ErrTransiente so callers know the transaction aborted cleanly.
func traduzErroBanco(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNaoEncontrado
	}
	msg := err.Error()
	if strings.Contains(msg, "40001") || strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "deadlock") || strings.Contains(msg, "timeout") {
		return fmt.Errorf("%w: %v", ErrTransiente, err)
	}
	return err
}
