package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrUserInactive       = errors.New("usuario inactivo")
	ErrInvalidCredential  = errors.New("contraseña incorrecta")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Fallos del almacén de registros. Se distinguen de una colección vacía.
	ErrCorruptData        = errors.New("datos almacenados ilegibles")
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")
	ErrUnsupportedSchema  = errors.New("versión de respaldo no soportada")
)
