package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrProfileNotFound     = fmt.Errorf("laboratorio no encontrado: %w", ErrNotFound)
	ErrCertificateNotFound = fmt.Errorf("certificado no encontrado: %w", ErrNotFound)
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrAlreadyExists       = errors.New("el recurso ya existe")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrAlreadySigned       = errors.New("el documento ya está firmado")
	ErrPeriodClosed        = fmt.Errorf("periodo fiscal ya cerrado: %w", ErrConflict)
	ErrHashComputation     = errors.New("no se pudo calcular el hash del documento")
	ErrSigning             = errors.New("error criptográfico al firmar")
	ErrPersistence         = errors.New("error de persistencia")
)
