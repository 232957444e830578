package service

import (
	"context"
	"errors"
	"time"

	"puntoventa/internal/config"
	"puntoventa/internal/dto"
	"puntoventa/internal/model"
	"puntoventa/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrCredenciales maps to 401. Deliberately indistinguishable between
// unknown user and wrong password.
var ErrCredenciales = errors.New("credenciales inválidas")

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}
	return s.buildLoginResponse(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrCredenciales
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrCredenciales
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrCredenciales
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrCredenciales
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, ErrCredenciales
	}
	return s.buildLoginResponse(user)
}

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, persistencia("no se pudo generar el hash de contraseña", err)
	}
	user := &model.Usuario{
		Username:     req.Username,
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if esViolacionUnicidad(err) {
			return nil, conflicto("el nombre de usuario ya existe")
		}
		return nil, persistencia("no se pudo crear el usuario", err)
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistencia("no se pudieron listar los usuarios", err)
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, validacion("usuario no encontrado")
	}
	if req.Nombre != "" {
		user.Nombre = req.Nombre
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Rol != "" {
		user.Rol = req.Rol
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			return nil, persistencia("no se pudo generar el hash de contraseña", err)
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, persistencia("no se pudo actualizar el usuario", err)
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return persistencia("no se pudo desactivar el usuario", err)
	}
	return nil
}

func (s *authService) buildLoginResponse(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"rol":      user.Rol,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Nombre:   u.Nombre,
		Email:    u.Email,
		Rol:      u.Rol,
		Activo:   u.Activo,
	}
}
