package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopease_back_end/internal/cache"
	"shopease_back_end/internal/models"
	"shopease_back_end/internal/utils"
)

var (
	ErrEmailTaken         = errors.New("un compte avec cet email existe déjà")
	ErrInvalidCredentials = errors.New("email ou mot de passe incorrect")
	ErrUserNotFound       = errors.New("utilisateur introuvable")
	ErrInvalidToken       = errors.New("token invalide")
	ErrMissingFields      = errors.New("email et mot de passe requis")
)

const (
	usersIndexKey   = "users"
	defaultTokenTTL = 24 * time.Hour
)

func userKey(id string) string {
	return "user:" + id
}

// Options de construction du service
type Options struct {
	Secret   string
	TokenTTL time.Duration
	Latency  time.Duration
}

// Service simule l'authentification sur le Store clé/valeur.
// Les comptes sont indexés par email (hash "users") et stockés sous "user:<id>".
type Service struct {
	store    cache.Store
	secret   []byte
	tokenTTL time.Duration
	latency  time.Duration
	now      func() time.Time
}

func NewService(store cache.Store, opts Options) *Service {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Service{
		store:    store,
		secret:   []byte(opts.Secret),
		tokenTTL: ttl,
		latency:  opts.Latency,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	Password        string              `json:"password"`
	Age             int                 `json:"age"`
	Phone           string              `json:"phone"`
	ShippingAddress *models.Address     `json:"shippingAddress,omitempty"`
	BillingAddress  *models.Address     `json:"billingAddress,omitempty"`
	Preferences     *models.Preferences `json:"preferences,omitempty"`
}

// ProfilePatch : seuls les champs non nil sont appliqués.
// Email, mot de passe, id et date de création ne sont pas modifiables.
type ProfilePatch struct {
	Name            *string             `json:"name,omitempty"`
	Age             *int                `json:"age,omitempty"`
	Phone           *string             `json:"phone,omitempty"`
	ShippingAddress *models.Address     `json:"shippingAddress,omitempty"`
	BillingAddress  *models.Address     `json:"billingAddress,omitempty"`
	Preferences     *models.Preferences `json:"preferences,omitempty"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register crée un compte, refuse un email déjà présent
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if err := utils.SimulateLatency(ctx, s.latency); err != nil {
		return models.User{}, err
	}

	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return models.User{}, ErrMissingFields
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash mot de passe: %w", err)
	}

	user := newUser(in, email, s.now())

	// Réservation atomique de l'email dans l'index
	reserved, err := s.store.HSetNX(ctx, usersIndexKey, email, user.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("index utilisateurs: %w", err)
	}
	if !reserved {
		return models.User{}, ErrEmailTaken
	}

	account := models.Account{User: user, PasswordHash: hash}
	if err := cache.SetJSON(ctx, s.store, userKey(user.ID), account, 0); err != nil {
		// on libère l'email pour ne pas bloquer une nouvelle tentative
		if delErr := s.store.HDel(ctx, usersIndexKey, email); delErr != nil {
			log.Printf("⚠️ Impossible de libérer l'email %s: %v", email, delErr)
		}
		return models.User{}, fmt.Errorf("enregistrement utilisateur: %w", err)
	}

	log.Printf("✅ Nouveau compte %s (%s)", user.ID, email)
	return user, nil
}

// newUser applique les valeurs par défaut d'une inscription
func newUser(in RegisterInput, email string, now time.Time) models.User {
	first, last := splitName(in.Name)
	defaultAddress := models.Address{
		FirstName: first,
		LastName:  last,
		Country:   models.DefaultCountry,
	}

	user := models.User{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(in.Name),
		Email:           email,
		Age:             in.Age,
		Phone:           in.Phone,
		ShippingAddress: defaultAddress,
		BillingAddress:  defaultAddress,
		Preferences: models.Preferences{
			DefaultShippingMethod: "standard",
		},
		CreatedAt: now.UTC(),
	}
	if in.ShippingAddress != nil {
		user.ShippingAddress = *in.ShippingAddress
	}
	if in.BillingAddress != nil {
		user.BillingAddress = *in.BillingAddress
	}
	if in.Preferences != nil {
		user.Preferences = *in.Preferences
	}
	return user
}

// splitName : premier mot = prénom, le reste = nom
func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// Login vérifie les identifiants et retourne l'utilisateur et un token signé
func (s *Service) Login(ctx context.Context, email, password string) (models.User, string, error) {
	if err := utils.SimulateLatency(ctx, s.latency); err != nil {
		return models.User{}, "", err
	}

	account, err := s.accountByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", err
	}

	ok, err := VerifyPassword(password, account.PasswordHash)
	if err != nil {
		log.Printf("❌ Empreinte du compte %s: %v", account.ID, err)
		return models.User{}, "", ErrInvalidCredentials
	}
	if !ok {
		return models.User{}, "", ErrInvalidCredentials
	}
	if NeedsRehash(account.PasswordHash) {
		s.rehash(ctx, account, password)
	}

	token, err := s.IssueToken(account.User)
	if err != nil {
		return models.User{}, "", fmt.Errorf("génération token: %w", err)
	}
	return account.User, token, nil
}

// rehash réécrit l'empreinte avec les paramètres actuels ; un échec n'empêche pas la connexion
func (s *Service) rehash(ctx context.Context, account models.Account, password string) {
	hash, err := HashPassword(password)
	if err != nil {
		log.Printf("⚠️ Rehash du compte %s: %v", account.ID, err)
		return
	}
	account.PasswordHash = hash
	if err := cache.SetJSON(ctx, s.store, userKey(account.ID), account, 0); err != nil {
		log.Printf("⚠️ Rehash du compte %s: %v", account.ID, err)
	}
}

// Get retourne le compte courant
func (s *Service) Get(ctx context.Context, id string) (models.User, error) {
	account, err := s.account(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	return account.User, nil
}

// UpdateProfile fusionne le patch dans le compte stocké
func (s *Service) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (models.User, error) {
	account, err := s.account(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	u := &account.User
	if patch.Name != nil {
		u.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Age != nil {
		u.Age = *patch.Age
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.ShippingAddress != nil {
		u.ShippingAddress = *patch.ShippingAddress
	}
	if patch.BillingAddress != nil {
		u.BillingAddress = *patch.BillingAddress
	}
	if patch.Preferences != nil {
		u.Preferences = *patch.Preferences
	}

	if err := cache.SetJSON(ctx, s.store, userKey(id), account, 0); err != nil {
		return models.User{}, fmt.Errorf("mise à jour profil: %w", err)
	}
	return account.User, nil
}

// Authenticate valide un token et vérifie qu'il n'a pas été révoqué
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.store.Exists(ctx, revokedKey(claims.ID))
	if err != nil {
		return nil, fmt.Errorf("vérification révocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Logout révoque le token jusqu'à son expiration
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	ttl := claims.remaining(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.store.Set(ctx, revokedKey(claims.ID), []byte("revoked"), ttl)
}

func (s *Service) account(ctx context.Context, id string) (models.Account, error) {
	var account models.Account
	err := cache.GetJSON(ctx, s.store, userKey(id), &account)
	if errors.Is(err, cache.ErrNotFound) {
		return account, ErrUserNotFound
	}
	return account, err
}

func (s *Service) accountByEmail(ctx context.Context, email string) (models.Account, error) {
	id, err := s.store.HGet(ctx, usersIndexKey, email)
	if errors.Is(err, cache.ErrNotFound) {
		return models.Account{}, ErrUserNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	return s.account(ctx, id)
}
