package dto

// Counterparty DTOs: clientes, proveedores, categorias.

// ─── Cliente ─────────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=120"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion"`
}

type ActualizarClienteRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=2,max=120"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion"`
}

type ClienteResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"`
	Direccion *string `json:"direccion"`
	Activo    bool    `json:"activo"`
}

// ─── Proveedor ───────────────────────────────────────────────────────────────

type CrearProveedorRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=120"`
	RFC       string  `json:"rfc"       validate:"required,min=12,max=13"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion"`
}

type ActualizarProveedorRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=2,max=120"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion"`
}

type ProveedorResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	RFC       string  `json:"rfc"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"`
	Direccion *string `json:"direccion"`
	Activo    bool    `json:"activo"`
}

// ─── Categoria ───────────────────────────────────────────────────────────────

type CrearCategoriaRequest struct {
	Nombre      string  `json:"nombre"      validate:"required,min=2,max=80"`
	Descripcion *string `json:"descripcion"`
}

type CategoriaResponse struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	Activo      bool    `json:"activo"`
}
