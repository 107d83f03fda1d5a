// Package testutil implementaciones en memoria de los puertos para tests de casos de uso y HTTP.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/storehub-api/internal/application/ports"
	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/domain/repository"
)

var (
	_ repository.UserRepository  = (*Users)(nil)
	_ repository.RoleRepository  = (*Roles)(nil)
	_ repository.StoreRepository = (*Stores)(nil)
	_ ports.IdentityProvider     = (*Provider)(nil)
)

// ──────────────────────────────────────────────────────────────────────────────
// Roles
// ──────────────────────────────────────────────────────────────────────────────

// Roles catálogo en memoria.
type Roles struct {
	mu     sync.Mutex
	byName map[string]entity.Role
	Err    error
	Calls  int
}

// NewRoles devuelve un catálogo vacío.
func NewRoles() *Roles { return &Roles{byName: map[string]entity.Role{}} }

// SeededRoles devuelve un catálogo con todos los roles.
func SeededRoles() *Roles {
	r := NewRoles()
	_ = r.EnsureRoles(context.Background(), authz.AllRoles())
	r.Calls = 0
	return r
}

func (r *Roles) EnsureRoles(_ context.Context, roles []entity.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return r.Err
	}
	for _, role := range roles {
		if _, ok := r.byName[role.Name]; !ok {
			r.byName[role.Name] = role
		}
	}
	return nil
}

func (r *Roles) List(_ context.Context) ([]entity.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]entity.Role, 0, len(r.byName))
	for _, role := range r.byName {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Roles) GetByNames(_ context.Context, names []string) ([]entity.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]entity.Role, 0, len(names))
	for _, n := range names {
		if role, ok := r.byName[n]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Stores
// ──────────────────────────────────────────────────────────────────────────────

// Stores tiendas en memoria.
type Stores struct {
	mu     sync.Mutex
	byCode map[string]*entity.Store
	nextID int64
	Err    error
	Gets   int
}

// NewStores devuelve un repositorio vacío.
func NewStores() *Stores { return &Stores{byCode: map[string]*entity.Store{}} }

// Add inserta una tienda activa con el dueño indicado y la devuelve.
func (s *Stores) Add(code string, ownerID int64) *entity.Store {
	st := &entity.Store{StoreCode: code, Name: "Tienda " + code, CurrencyCode: "USD", Status: entity.StoreStatusActive, OwnerUserID: ownerID}
	_ = s.Create(context.Background(), st)
	return st
}

func (s *Stores) Create(_ context.Context, st *entity.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.byCode[st.StoreCode]; ok {
		return domain.ErrDuplicate
	}
	s.nextID++
	st.ID = s.nextID
	st.CreatedAt = time.Now()
	st.UpdatedAt = st.CreatedAt
	cp := *st
	s.byCode[st.StoreCode] = &cp
	return nil
}

func (s *Stores) GetByCode(_ context.Context, code string) (*entity.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Gets++
	if s.Err != nil {
		return nil, s.Err
	}
	st, ok := s.byCode[code]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (s *Stores) byID(id int64) *entity.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.byCode {
		if st.ID == id {
			return st
		}
	}
	return nil
}

func (s *Stores) List(_ context.Context) ([]*entity.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*entity.Store, 0, len(s.byCode))
	for _, st := range s.byCode {
		cp := *st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Stores) UpdateMetadata(_ context.Context, st *entity.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	cur, ok := s.byCode[st.StoreCode]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name, cur.Description, cur.CurrencyCode = st.Name, st.Description, st.CurrencyCode
	cur.UpdatedAt = time.Now()
	return nil
}

func (s *Stores) SetStatus(_ context.Context, code, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	cur, ok := s.byCode[code]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = status
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Users
// ──────────────────────────────────────────────────────────────────────────────

// Users usuarios en memoria. Stores se usa para completar store_code al ligar tiendas.
type Users struct {
	mu     sync.Mutex
	byUID  map[string]*entity.User
	nextID int64
	stores *Stores
	Err    error

	// Último listado recibido por Query.
	LastQuery    *entity.UserListQuery
	LastPageSize int
	LastPageNum  int
}

// NewUsers devuelve un repositorio vacío.
func NewUsers(stores *Stores) *Users {
	return &Users{byUID: map[string]*entity.User{}, stores: stores}
}

// Add inserta un usuario activo con los roles indicados y lo devuelve.
func (u *Users) Add(uid string, storeCode string, roles ...string) *entity.User {
	user := &entity.User{UID: uid, Email: uid + "@example.com", FullName: "User " + uid, IsActive: true}
	for _, n := range roles {
		for _, r := range authz.AllRoles() {
			if r.Name == n {
				user.Roles = append(user.Roles, r)
			}
		}
	}
	if storeCode != "" && u.stores != nil {
		if st, _ := u.stores.GetByCode(context.Background(), storeCode); st != nil {
			id := st.ID
			user.StoreID = &id
		}
		user.StoreCode = storeCode
	}
	_ = u.Create(context.Background(), user)
	return user
}

// Get devuelve una copia del usuario o nil.
func (u *Users) Get(uid string) *entity.User {
	user, _ := u.FindByUID(context.Background(), uid)
	return user
}

func clone(user *entity.User) *entity.User {
	cp := *user
	cp.Roles = append([]entity.Role(nil), user.Roles...)
	if user.StoreID != nil {
		id := *user.StoreID
		cp.StoreID = &id
	}
	return &cp
}

func (u *Users) FindByUID(_ context.Context, uid string) (*entity.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	user, ok := u.byUID[uid]
	if !ok {
		return nil, nil
	}
	return clone(user), nil
}

func (u *Users) Create(_ context.Context, user *entity.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	if _, ok := u.byUID[user.UID]; ok {
		return domain.ErrDuplicate
	}
	u.nextID++
	user.ID = u.nextID
	user.CreatedAt = time.Now().Add(time.Duration(u.nextID) * time.Millisecond)
	user.UpdatedAt = user.CreatedAt
	u.byUID[user.UID] = clone(user)
	return nil
}

func (u *Users) update(id int64, fn func(*entity.User)) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	for _, user := range u.byUID {
		if user.ID == id {
			fn(user)
			user.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (u *Users) SetRoles(_ context.Context, id int64, roles []entity.Role) error {
	return u.update(id, func(user *entity.User) { user.Roles = append([]entity.Role(nil), roles...) })
}

func (u *Users) SetActive(_ context.Context, id int64, active bool) error {
	return u.update(id, func(user *entity.User) { user.IsActive = active })
}

func (u *Users) MarkTutorialPassed(_ context.Context, id int64) error {
	return u.update(id, func(user *entity.User) { user.IsPassTutorial = true })
}

func (u *Users) UpdateProfile(_ context.Context, id int64, p entity.UserProfile) error {
	return u.update(id, func(user *entity.User) {
		user.FullName, user.Phone = p.FullName, p.Phone
		user.Address1, user.Address2 = p.Address1, p.Address2
		user.Country, user.Currency = p.Country, p.Currency
	})
}

func (u *Users) BindStore(_ context.Context, userID, storeID int64) error {
	var code string
	if u.stores != nil {
		st := u.stores.byID(storeID)
		if st == nil {
			return fmt.Errorf("tienda %d inexistente", storeID)
		}
		code = st.StoreCode
	}
	return u.update(userID, func(user *entity.User) {
		id := storeID
		user.StoreID = &id
		user.StoreCode = code
	})
}

func (u *Users) Query(_ context.Context, q entity.UserListQuery, pageSize, pageNum int) (*entity.UserPage, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	qc := q
	u.LastQuery, u.LastPageSize, u.LastPageNum = &qc, pageSize, pageNum

	var matched []*entity.User
	for _, user := range u.byUID {
		if matches(user, q.Filter) {
			matched = append(matched, clone(user))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	pages := (total + pageSize - 1) / pageSize
	start := (pageNum - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return &entity.UserPage{
		Items:   matched[start:end],
		Total:   total,
		Pages:   pages,
		HasNext: pageNum < pages,
		HasPrev: pageNum > 1,
	}, nil
}

func matches(user *entity.User, f entity.UserFilter) bool {
	if user.IsActive == f.Inactive {
		return false
	}
	if len(f.Stores) > 0 && !contains(f.Stores, user.StoreCode) {
		return false
	}
	if len(f.Emails) > 0 && !contains(f.Emails, strings.ToLower(user.Email)) {
		return false
	}
	if len(f.Countries) > 0 && !contains(f.Countries, user.Country) {
		return false
	}
	if len(f.Names) > 0 {
		ok := false
		for _, n := range f.Names {
			ok = ok || strings.Contains(strings.ToLower(user.FullName), strings.ToLower(n))
		}
		if !ok {
			return false
		}
	}
	if f.Platform {
		ok := false
		for _, r := range user.Roles {
			ok = ok || authz.IsPlatform(r.Name)
		}
		if !ok {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner
// ──────────────────────────────────────────────────────────────────────────────

// Tx ejecuta el callback directamente sobre los repos en memoria (sin rollback).
type Tx struct {
	Users  *Users
	Stores *Stores
	Runs   int
}

func (t *Tx) RunStoreWrite(_ context.Context, fn func(users repository.UserRepository, stores repository.StoreRepository) error) error {
	t.Runs++
	return fn(t.Users, t.Stores)
}

// ──────────────────────────────────────────────────────────────────────────────
// Proveedor de identidad
// ──────────────────────────────────────────────────────────────────────────────

// Provider proveedor de identidad en memoria: tokens -> uid y cuentas por uid.
type Provider struct {
	mu       sync.Mutex
	tokens   map[string]string
	accounts map[string]*ports.ExternalIdentity
	created  int

	VerifyErr      error
	GetErr         error
	CreateErr      error
	SetDisabledErr error
	Verifications  int
}

// NewProvider devuelve un proveedor vacío.
func NewProvider() *Provider {
	return &Provider{tokens: map[string]string{}, accounts: map[string]*ports.ExternalIdentity{}}
}

// AddAccount registra una cuenta y un token válido para ella.
func (p *Provider) AddAccount(token, uid, email, displayName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[uid] = &ports.ExternalIdentity{UID: uid, Email: email, DisplayName: displayName}
	if token != "" {
		p.tokens[token] = uid
	}
}

// Account devuelve una copia de la cuenta o nil.
func (p *Provider) Account(uid string) *ports.ExternalIdentity {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.accounts[uid]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func (p *Provider) VerifyToken(ctx context.Context, token string) (*ports.ExternalIdentity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Verifications++
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if p.VerifyErr != nil {
		return nil, p.VerifyErr
	}
	uid, ok := p.tokens[token]
	if !ok {
		return nil, domain.ErrInvalidCredential
	}
	cp := *p.accounts[uid]
	return &cp, nil
}

func (p *Provider) GetUser(ctx context.Context, uid string) (*ports.ExternalIdentity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if p.GetErr != nil {
		return nil, p.GetErr
	}
	a, ok := p.accounts[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *a
	return &cp, nil
}

func (p *Provider) CreateUser(_ context.Context, email, _ string, displayName string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CreateErr != nil {
		return "", p.CreateErr
	}
	p.created++
	uid := fmt.Sprintf("created-%d", p.created)
	p.accounts[uid] = &ports.ExternalIdentity{UID: uid, Email: email, DisplayName: displayName}
	return uid, nil
}

func (p *Provider) SetDisabled(_ context.Context, uid string, disabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SetDisabledErr != nil {
		return p.SetDisabledErr
	}
	a, ok := p.accounts[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	a.Disabled = disabled
	return nil
}
