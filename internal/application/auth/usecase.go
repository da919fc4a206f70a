package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/jwt"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de cuentas: registro, login y perfil propio.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	log      *logger.Logger
	cost     int
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
		log:      log.Named("auth"),
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// WithHashCost cambia el costo de bcrypt (tests usan bcrypt.MinCost).
func (uc *AuthUseCase) WithHashCost(cost int) *AuthUseCase {
	uc.cost = cost
	return uc
}

// NormalizeEmail recorta espacios y aplica case folding Unicode.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// Register crea una cuenta customer. El rol nunca viene del request.
// Si el email ya existe, el store devuelve ErrEmailAlreadyExists.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := uc.now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        NormalizeEmail(in.Email),
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         entity.RoleCustomer,
		Preferences:  entity.DefaultPreferences(),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	token, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Msg("cuenta registrada")
	return &dto.AuthResponse{User: *ToUserResponse(user), Token: token}, nil
}

// Login verifica credenciales. Email desconocido y password incorrecto devuelven el mismo
// ErrUnauthorized; en ambos casos se ejecuta un bcrypt compare para no filtrar por tiempos.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(uc.dummy(), []byte(in.Password))
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: cuenta desactivada", domain.ErrForbidden)
	}
	now := uc.now().UTC()
	if err := uc.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	token, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{User: *ToUserResponse(user), Token: token}, nil
}

// GetProfile devuelve la cuenta del usuario autenticado.
func (uc *AuthUseCase) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// UpdateProfile actualización parcial del perfil propio. Email, rol y password no se tocan aquí.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	user, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Avatar != nil {
		user.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if in.Addresses != nil {
		user.Addresses = make([]entity.Address, 0, len(*in.Addresses))
		for _, a := range *in.Addresses {
			user.Addresses = append(user.Addresses, a.ToEntity())
		}
	}
	if in.Preferences != nil {
		user.Preferences = entity.Preferences{
			EmailNotifications: in.Preferences.EmailNotifications,
			SMSNotifications:   in.Preferences.SMSNotifications,
			Newsletter:         in.Preferences.Newsletter,
		}
	}
	user.UpdatedAt = uc.now().UTC()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

func (uc *AuthUseCase) load(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (uc *AuthUseCase) issue(user *entity.User) (string, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return "", fmt.Errorf("generar token: %w", err)
	}
	return token, nil
}

// dummy hash con el mismo costo que los reales, para igualar tiempos en emails desconocidos.
func (uc *AuthUseCase) dummy() []byte {
	uc.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), uc.cost)
		if err != nil {
			uc.log.Error().Err(err).Msg("no se pudo generar hash dummy")
		}
		uc.dummyHash = h
	})
	return uc.dummyHash
}

// ToUserResponse mapea la entidad sin exponer el hash.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	addrs := make([]dto.AddressDTO, 0, len(u.Addresses))
	for _, a := range u.Addresses {
		addrs = append(addrs, dto.AddressFromEntity(a))
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Avatar:    u.Avatar,
		Role:      u.Role,
		Addresses: addrs,
		Preferences: dto.PreferencesDTO{
			EmailNotifications: u.Preferences.EmailNotifications,
			SMSNotifications:   u.Preferences.SMSNotifications,
			Newsletter:         u.Preferences.Newsletter,
		},
		IsVerified: u.IsVerified,
		IsActive:   u.IsActive,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
