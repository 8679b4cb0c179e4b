package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto. Limit 0 significa "sin límite".
func (p *PageRequest) DefaultPage() {
	if p.Limit < 0 || p.Limit > 500 {
		p.Limit = 500
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Paginate recorta items según la página.
func Paginate[T any](items []T, p PageRequest) []T {
	p.DefaultPage()
	if p.Offset >= len(items) {
		return []T{}
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

// ListResponse listado con metadatos de página.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewListResponse pagina items y arma la respuesta.
func NewListResponse[T any](items []T, p PageRequest) ListResponse[T] {
	p.DefaultPage()
	return ListResponse[T]{Items: Paginate(items, p), Total: len(items), Limit: p.Limit, Offset: p.Offset}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
