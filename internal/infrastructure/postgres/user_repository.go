package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL (usable con pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `
	u.id, u.uid, u.email, u.fullname, u.phone, u.address1, u.address2, u.country, u.currency,
	u.is_active, u.is_pass_tutorial, u.from_store_id, COALESCE(s.store_code, ''), u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.UID, &u.Email, &u.FullName, &u.Phone, &u.Address1, &u.Address2, &u.Country, &u.Currency,
		&u.IsActive, &u.IsPassTutorial, &u.StoreID, &u.StoreCode, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByUID obtiene el usuario con sus roles y el store_code de su tienda.
func (r *UserRepo) FindByUID(ctx context.Context, uid string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` ` + userFrom + ` WHERE u.uid = $1`
	u, err := scanUser(r.q.QueryRow(ctx, query, uid))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by uid: %w", err)
	}
	if err := r.loadRoles(ctx, []*entity.User{u}); err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserta el usuario y sus roles en una misma transacción.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return inTx(ctx, r.q, func(tx pgx.Tx) error {
		query := `
			INSERT INTO users (uid, email, fullname, phone, address1, address2, country, currency,
			                   is_active, is_pass_tutorial, from_store_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at`
		err := tx.QueryRow(ctx, query,
			user.UID, user.Email, user.FullName, user.Phone, user.Address1, user.Address2,
			user.Country, user.Currency, user.IsActive, user.IsPassTutorial, user.StoreID,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return insertRoles(ctx, tx, user.ID, user.Roles)
	})
}

// SetRoles reemplaza los roles del usuario.
func (r *UserRepo) SetRoles(ctx context.Context, userID int64, roles []entity.Role) error {
	return inTx(ctx, r.q, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("delete user roles: %w", err)
		}
		if err := insertRoles(ctx, tx, userID, roles); err != nil {
			return err
		}
		return touch(ctx, tx, userID)
	})
}

func insertRoles(ctx context.Context, q Querier, userID int64, roles []entity.Role) error {
	if len(roles) == 0 {
		return nil
	}
	ids := make([]int32, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, int32(role.ID))
	}
	_, err := q.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, unnest($2::int[])
		ON CONFLICT DO NOTHING`, userID, ids)
	if err != nil {
		return fmt.Errorf("insert user roles: %w", err)
	}
	return nil
}

func touch(ctx context.Context, q Querier, userID int64) error {
	cmd, err := q.Exec(ctx, `UPDATE users SET updated_at = now() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive cambia el flag is_active.
func (r *UserRepo) SetActive(ctx context.Context, userID int64, active bool) error {
	return r.update(ctx, "set user active", `is_active = $2`, userID, active)
}

// MarkTutorialPassed marca el tutorial como visto.
func (r *UserRepo) MarkTutorialPassed(ctx context.Context, userID int64) error {
	return r.update(ctx, "mark tutorial", `is_pass_tutorial = true`, userID)
}

// UpdateProfile actualiza los campos editables del perfil.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int64, p entity.UserProfile) error {
	return r.update(ctx, "update profile",
		`fullname = $2, phone = $3, address1 = $4, address2 = $5, country = $6, currency = $7`,
		userID, p.FullName, p.Phone, p.Address1, p.Address2, p.Country, p.Currency)
}

// BindStore liga el usuario a una tienda.
func (r *UserRepo) BindStore(ctx context.Context, userID, storeID int64) error {
	return r.update(ctx, "bind store", `from_store_id = $2`, userID, storeID)
}

func (r *UserRepo) update(ctx context.Context, op, set string, userID int64, args ...any) error {
	query := `UPDATE users SET ` + set + `, updated_at = now() WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, append([]any{userID}, args...)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Query devuelve una página del listado. pageNum empieza en 1.
func (r *UserRepo) Query(ctx context.Context, lq entity.UserListQuery, pageSize, pageNum int) (*entity.UserPage, error) {
	if pageSize < 1 || pageNum < 1 {
		return nil, fmt.Errorf("%w: página %d de tamaño %d", domain.ErrInvalidParams, pageNum, pageSize)
	}
	q, err := buildUserQuery(lq)
	if err != nil {
		return nil, err
	}

	var total int
	countSQL := `SELECT count(*) ` + userFrom + ` ` + q.where
	if err := r.q.QueryRow(ctx, countSQL, q.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	limit := q.arg(pageSize)
	offset := q.arg((pageNum - 1) * pageSize)
	listSQL := `SELECT ` + userColumns + ` ` + userFrom + ` ` + q.where + ` ` + q.orderBy +
		` LIMIT ` + limit + ` OFFSET ` + offset
	rows, err := r.q.Query(ctx, listSQL, q.args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	items := make([]*entity.User, 0, pageSize)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if err := r.loadRoles(ctx, items); err != nil {
		return nil, err
	}

	pages := (total + pageSize - 1) / pageSize
	return &entity.UserPage{
		Items:   items,
		Total:   total,
		Pages:   pages,
		HasNext: pageNum < pages,
		HasPrev: pageNum > 1,
	}, nil
}

// loadRoles completa los roles de los usuarios con una sola consulta.
func (r *UserRepo) loadRoles(ctx context.Context, users []*entity.User) error {
	if len(users) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.User, len(users))
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		byID[u.ID] = u
		ids = append(ids, u.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT ur.user_id, r.id, r.name
		  FROM user_roles ur JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = ANY($1)
		 ORDER BY r.id`, ids)
	if err != nil {
		return fmt.Errorf("load user roles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID int64
		var role entity.Role
		if err := rows.Scan(&userID, &role.ID, &role.Name); err != nil {
			return fmt.Errorf("scan user role: %w", err)
		}
		if u := byID[userID]; u != nil {
			u.Roles = append(u.Roles, role)
		}
	}
	return rows.Err()
}
