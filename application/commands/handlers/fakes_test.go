package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"idadmin/application/ports"
	"idadmin/domain/core/aggregates"
	"idadmin/domain/core/entities"
	"idadmin/domain/core/valueobjects"
	"idadmin/domain/events"
	"idadmin/pkg/common"
	"idadmin/pkg/errors"
)

// In-memory fakes mirroring the repository contracts: (nil, nil) on absence,
// version advance and buffer clear on successful update-saves, post-save
// callbacks invoked before the "commit".

type fakeUserRepo struct {
	byID      map[string]*aggregates.User
	saveCalls int
	saveErr   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*aggregates.User)}
}

func (r *fakeUserRepo) Save(ctx context.Context, user *aggregates.User, postSave ports.PostSaveCallback) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	if postSave != nil {
		if err := postSave(ctx, nil); err != nil {
			return err
		}
	}
	_, existed := r.byID[user.ID()]
	r.byID[user.ID()] = user
	if existed {
		user.AdvanceVersion()
	}
	user.ClearEvents()
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*aggregates.User, error) {
	return r.byID[id], nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email valueobjects.Email) (*aggregates.User, error) {
	for _, u := range r.byID {
		if u.Email().Equals(email) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username valueobjects.Username) (*aggregates.User, error) {
	for _, u := range r.byID {
		if !u.Username().IsZero() && u.Username().String() == username.String() {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByExternalID(ctx context.Context, externalID string) (*aggregates.User, error) {
	for _, u := range r.byID {
		if u.ExternalID() == externalID {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email valueobjects.Email, excludeID string) (bool, error) {
	for id, u := range r.byID {
		if u.Email().Equals(email) && (excludeID == "" || id != excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username valueobjects.Username, excludeID string) (bool, error) {
	for id, u := range r.byID {
		if !u.Username().IsZero() && u.Username().String() == username.String() && (excludeID == "" || id != excludeID) {
			return true, nil
		}
	}
	return false, nil
}

type fakeGroupRepo struct {
	byID      map[string]*aggregates.UserGroup
	roles     map[string]map[string]bool
	members   map[string]map[string]bool
	saveCalls int
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		byID:    make(map[string]*aggregates.UserGroup),
		roles:   make(map[string]map[string]bool),
		members: make(map[string]map[string]bool),
	}
}

func (r *fakeGroupRepo) Save(ctx context.Context, group *aggregates.UserGroup, postSave ports.PostSaveCallback) error {
	r.saveCalls++
	if postSave != nil {
		if err := postSave(ctx, nil); err != nil {
			return err
		}
	}
	_, existed := r.byID[group.ID()]
	r.byID[group.ID()] = group
	if existed {
		group.AdvanceVersion()
	}
	group.ClearEvents()
	return nil
}

func (r *fakeGroupRepo) Delete(ctx context.Context, group *aggregates.UserGroup) error {
	if _, ok := r.byID[group.ID()]; !ok {
		return errors.NewVersionConflictError("user group", errors.ConflictDeleted, group.Version(), -1)
	}
	delete(r.byID, group.ID())
	delete(r.roles, group.ID())
	delete(r.members, group.ID())
	group.ClearEvents()
	return nil
}

func (r *fakeGroupRepo) FindByID(ctx context.Context, id string) (*aggregates.UserGroup, error) {
	return r.byID[id], nil
}

func (r *fakeGroupRepo) FindByName(ctx context.Context, name valueobjects.GroupName) (*aggregates.UserGroup, error) {
	for _, g := range r.byID {
		if g.Name().String() == name.String() {
			return g, nil
		}
	}
	return nil, nil
}

func (r *fakeGroupRepo) ExistsByName(ctx context.Context, name valueobjects.GroupName, excludeID string) (bool, error) {
	for id, g := range r.byID {
		if g.Name().String() == name.String() && (excludeID == "" || id != excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeGroupRepo) RoleInGroup(ctx context.Context, groupID, roleCode string) (bool, error) {
	return r.roles[groupID][roleCode], nil
}

func (r *fakeGroupRepo) UserInGroup(ctx context.Context, groupID, userID string) (bool, error) {
	return r.members[groupID][userID], nil
}

func (r *fakeGroupRepo) ListGroupRoles(ctx context.Context, groupID string) ([]string, error) {
	var out []string
	for code := range r.roles[groupID] {
		out = append(out, code)
	}
	return out, nil
}

func (r *fakeGroupRepo) ListGroupUsers(ctx context.Context, groupID string) ([]string, error) {
	var out []string
	for id := range r.members[groupID] {
		out = append(out, id)
	}
	return out, nil
}

func (r *fakeGroupRepo) ListUserRoles(ctx context.Context, userID string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for groupID, users := range r.members {
		if !users[userID] {
			continue
		}
		for code := range r.roles[groupID] {
			if !seen[code] {
				seen[code] = true
				out = append(out, code)
			}
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) AddRoleMember(ctx context.Context, tx *sql.Tx, groupID, roleCode string) error {
	if r.roles[groupID][roleCode] {
		return errors.NewValidationError("role is already in group").WithCode("ROLE_ALREADY_IN_GROUP")
	}
	if r.roles[groupID] == nil {
		r.roles[groupID] = make(map[string]bool)
	}
	r.roles[groupID][roleCode] = true
	return nil
}

func (r *fakeGroupRepo) RemoveRoleMember(ctx context.Context, tx *sql.Tx, groupID, roleCode string) error {
	delete(r.roles[groupID], roleCode)
	return nil
}

func (r *fakeGroupRepo) AddUserMember(ctx context.Context, tx *sql.Tx, groupID, userID string) error {
	if r.members[groupID][userID] {
		return errors.NewValidationError("user is already in group").WithCode("USER_ALREADY_IN_GROUP")
	}
	if r.members[groupID] == nil {
		r.members[groupID] = make(map[string]bool)
	}
	r.members[groupID][userID] = true
	return nil
}

func (r *fakeGroupRepo) RemoveUserMember(ctx context.Context, tx *sql.Tx, groupID, userID string) error {
	delete(r.members[groupID], userID)
	return nil
}

type fakeRoleRepo struct {
	byCode map[string]entities.Role
}

func newFakeRoleRepo(codes ...string) *fakeRoleRepo {
	r := &fakeRoleRepo{byCode: make(map[string]entities.Role)}
	for _, code := range codes {
		r.byCode[code] = entities.Role{Code: code, Name: code}
	}
	return r
}

func (r *fakeRoleRepo) FindByCode(ctx context.Context, code string) (*entities.Role, error) {
	role, ok := r.byCode[code]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func (r *fakeRoleRepo) List(ctx context.Context) ([]entities.Role, error) {
	var out []entities.Role
	for _, role := range r.byCode {
		out = append(out, role)
	}
	return out, nil
}

type fakeIdentity struct {
	created     []ports.Credentials
	tokens      map[string]string
	verifyCalls int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{tokens: make(map[string]string)}
}

func (p *fakeIdentity) Verify(ctx context.Context, token string) (string, error) {
	p.verifyCalls++
	externalID, ok := p.tokens[token]
	if !ok {
		return "", fmt.Errorf("unknown token")
	}
	return externalID, nil
}

func (p *fakeIdentity) FindUserByID(ctx context.Context, externalID string) (*ports.IdentityProfile, error) {
	return &ports.IdentityProfile{ExternalID: externalID}, nil
}

func (p *fakeIdentity) CreateUser(ctx context.Context, creds ports.Credentials) (string, error) {
	p.created = append(p.created, creds)
	return "ext-" + creds.Email, nil
}

func (p *fakeIdentity) VerifyPassword(ctx context.Context, identifier, secret string) (*ports.PasswordVerification, error) {
	return nil, nil
}

type recordingDispatcher struct {
	dispatched []events.Event
	err        error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, evts []events.Event) error {
	if d.err != nil {
		return d.err
	}
	d.dispatched = append(d.dispatched, evts...)
	return nil
}

func ctxWithPrincipal(userID string, roles ...string) context.Context {
	return common.WithPrincipal(context.Background(), &common.Principal{UserID: userID, Roles: roles})
}

func adminCtx() context.Context {
	return ctxWithPrincipal("admin-1", entities.RoleAdmin)
}
