// Package memory is an in-process implementation of the repository set. It
// backs the "memory" database driver and the service and router tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/app/repositories"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/helpers"
)

// store holds every collection behind a single lock
type store struct {
	mu sync.RWMutex

	nextID   map[string]int64
	counters map[string]int64

	accounts     map[int64]*models.Account
	students     map[int64]*models.Student
	admins       map[int64]*models.Admin
	faculty      map[int64]*models.Faculty
	chats        map[int64]*models.Chat
	messages     map[int64]*models.ChatMessage
	issues       map[int64]*models.Issue
	feedback     map[int64]*models.Feedback
	instructions map[int64]*models.ChatbotInstruction
}

func newStore() *store {
	return &store{
		nextID:       map[string]int64{},
		counters:     map[string]int64{},
		accounts:     map[int64]*models.Account{},
		students:     map[int64]*models.Student{},
		admins:       map[int64]*models.Admin{},
		faculty:      map[int64]*models.Faculty{},
		chats:        map[int64]*models.Chat{},
		messages:     map[int64]*models.ChatMessage{},
		issues:       map[int64]*models.Issue{},
		feedback:     map[int64]*models.Feedback{},
		instructions: map[int64]*models.ChatbotInstruction{},
	}
}

// id returns the next internal key of a table; callers hold the write lock
func (s *store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

// NewRepositories returns a repository set sharing one in-memory store
func NewRepositories() *repositories.Repositories {
	s := newStore()
	return &repositories.Repositories{
		AccountRepository:     &AccountRepository{s: s},
		StudentRepository:     &StudentRepository{s: s},
		AdminRepository:       &AdminRepository{s: s},
		FacultyRepository:     &FacultyRepository{s: s},
		ChatRepository:        &ChatRepository{s: s},
		ChatMessageRepository: &ChatMessageRepository{s: s},
		IssueRepository:       &IssueRepository{s: s},
		FeedbackRepository:    &FeedbackRepository{s: s},
		InstructionRepository: &InstructionRepository{s: s},
		SequenceRepository:    &SequenceRepository{s: s},
	}
}

func page[T any](items []T, opts repositories.ListOptions) []T {
	start, end := helpers.CalculateSliceIndices(opts.Offset, opts.Limit, len(items))
	return items[start:end]
}

func ptrCopy[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// SequenceRepository is the in-memory counter
type SequenceRepository struct{ s *store }

// Next advances the named counter and returns the new value
func (r *SequenceRepository) Next(_ context.Context, name string, floor int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	next := r.s.counters[name] + 1
	if next < floor {
		next = floor
	}
	r.s.counters[name] = next
	return next, nil
}

// AccountRepository is the in-memory account collection
type AccountRepository struct{ s *store }

func cloneAccount(a *models.Account) *models.Account {
	c := *a
	c.ApprovedBy = ptrCopy(a.ApprovedBy)
	c.ApprovedAt = ptrCopy(a.ApprovedAt)
	c.SuspensionReason = ptrCopy(a.SuspensionReason)
	c.SuspendedAt = ptrCopy(a.SuspendedAt)
	return &c
}

// Create inserts a new account
func (r *AccountRepository) Create(_ context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.accounts {
		if strings.EqualFold(existing.Username, account.Username) {
			return apperrors.ErrEmailAlreadyExists
		}
		if existing.AccountNumber == account.AccountNumber {
			return apperrors.ErrConflict
		}
	}

	now := time.Now()
	account.ID = r.s.id("accounts")
	account.CreatedAt, account.UpdatedAt = now, now
	r.s.accounts[account.ID] = cloneAccount(account)
	return nil
}

// GetByID retrieves an account by internal id
func (r *AccountRepository) GetByID(_ context.Context, id int64) (*models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

// GetByUsername retrieves an account by login name
func (r *AccountRepository) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.accounts {
		if a.Username == username {
			return cloneAccount(a), nil
		}
	}
	return nil, apperrors.ErrAccountNotFound
}

// UsernameExists checks whether the login name is taken
func (r *AccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UpdateStatus persists status and approval/suspension metadata
func (r *AccountRepository) UpdateStatus(_ context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.accounts[account.ID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	account.UpdatedAt = time.Now()
	stored.Status = account.Status
	stored.ApprovedBy = ptrCopy(account.ApprovedBy)
	stored.ApprovedAt = ptrCopy(account.ApprovedAt)
	stored.SuspensionReason = ptrCopy(account.SuspensionReason)
	stored.SuspendedAt = ptrCopy(account.SuspendedAt)
	stored.UpdatedAt = account.UpdatedAt
	return nil
}

// UpdateUsername changes the login name of an account
func (r *AccountRepository) UpdateUsername(_ context.Context, id int64, username string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.accounts[id]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	for _, a := range r.s.accounts {
		if a.ID != id && strings.EqualFold(a.Username, username) {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	stored.Username = username
	stored.UpdatedAt = time.Now()
	return nil
}

// Delete removes an account
func (r *AccountRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[id]; !ok {
		return apperrors.ErrAccountNotFound
	}
	delete(r.s.accounts, id)
	return nil
}

// List returns a page of accounts ordered by account number
func (r *AccountRepository) List(_ context.Context, opts repositories.ListOptions) ([]*models.Account, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []*models.Account{}
	for _, a := range r.s.accounts {
		if helpers.ContainsFold(opts.Search, a.Username) {
			matched = append(matched, cloneAccount(a))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].AccountNumber < matched[j].AccountNumber })
	return page(matched, opts), int64(len(matched)), nil
}

// StudentRepository is the in-memory student collection
type StudentRepository struct{ s *store }

func cloneStudent(s *models.Student) *models.Student {
	c := *s
	c.Account = nil
	return &c
}

func (r *StudentRepository) checkUnique(student *models.Student) error {
	for _, existing := range r.s.students {
		if existing.ID == student.ID {
			continue
		}
		if strings.EqualFold(existing.Email, student.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
		if existing.AcademicID == student.AcademicID || existing.AccountID == student.AccountID {
			return apperrors.ErrConflict
		}
	}
	return nil
}

// Create inserts a new student profile
func (r *StudentRepository) Create(_ context.Context, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	student.ID = 0
	if err := r.checkUnique(student); err != nil {
		return err
	}
	now := time.Now()
	student.ID = r.s.id("students")
	student.CreatedAt, student.UpdatedAt = now, now
	r.s.students[student.ID] = cloneStudent(student)
	return nil
}

// GetByID retrieves a student by internal id
func (r *StudentRepository) GetByID(_ context.Context, id int64) (*models.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return cloneStudent(s), nil
}

// GetByAccountID retrieves the student profile of an account
func (r *StudentRepository) GetByAccountID(_ context.Context, accountID int64) (*models.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, s := range r.s.students {
		if s.AccountID == accountID {
			return cloneStudent(s), nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

// GetByIDs loads several students at once
func (r *StudentRepository) GetByIDs(_ context.Context, ids []int64) (map[int64]*models.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[int64]*models.Student, len(ids))
	for _, id := range ids {
		if s, ok := r.s.students[id]; ok {
			result[id] = cloneStudent(s)
		}
	}
	return result, nil
}

// Update writes all mutable profile fields
func (r *StudentRepository) Update(_ context.Context, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.students[student.ID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if err := r.checkUnique(student); err != nil {
		return err
	}
	student.UpdatedAt = time.Now()
	stored.Name, stored.Gender, stored.Address = student.Name, student.Gender, student.Address
	stored.Phone, stored.Email, stored.Major = student.Phone, student.Email, student.Major
	stored.UpdatedAt = student.UpdatedAt
	return nil
}

// Delete removes a student profile
func (r *StudentRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(r.s.students, id)
	return nil
}

// List returns a page of students ordered by academic id
func (r *StudentRepository) List(_ context.Context, opts repositories.ListOptions) ([]*models.Student, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []*models.Student{}
	for _, s := range r.s.students {
		if helpers.ContainsFold(opts.Search, s.Name, s.Email, s.AcademicID, s.Major) {
			matched = append(matched, cloneStudent(s))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].AcademicID < matched[j].AcademicID })
	return page(matched, opts), int64(len(matched)), nil
}

// AdminRepository is the in-memory admin collection
type AdminRepository struct{ s *store }

func cloneAdmin(a *models.Admin) *models.Admin {
	c := *a
	c.Account = nil
	return &c
}

// Create inserts a new admin profile
func (r *AdminRepository) Create(_ context.Context, admin *models.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.admins {
		if strings.EqualFold(existing.Email, admin.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
		if existing.AccountID == admin.AccountID {
			return apperrors.ErrConflict
		}
	}
	now := time.Now()
	admin.ID = r.s.id("admins")
	admin.CreatedAt, admin.UpdatedAt = now, now
	r.s.admins[admin.ID] = cloneAdmin(admin)
	return nil
}

// GetByID retrieves an admin by internal id
func (r *AdminRepository) GetByID(_ context.Context, id int64) (*models.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.admins[id]
	if !ok {
		return nil, apperrors.ErrAdminNotFound
	}
	return cloneAdmin(a), nil
}

// GetByAccountID retrieves the admin profile of an account
func (r *AdminRepository) GetByAccountID(_ context.Context, accountID int64) (*models.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.admins {
		if a.AccountID == accountID {
			return cloneAdmin(a), nil
		}
	}
	return nil, apperrors.ErrAdminNotFound
}

// GetByIDs loads several admins at once
func (r *AdminRepository) GetByIDs(_ context.Context, ids []int64) (map[int64]*models.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[int64]*models.Admin, len(ids))
	for _, id := range ids {
		if a, ok := r.s.admins[id]; ok {
			result[id] = cloneAdmin(a)
		}
	}
	return result, nil
}

// Delete removes an admin profile
func (r *AdminRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.admins[id]; !ok {
		return apperrors.ErrAdminNotFound
	}
	delete(r.s.admins, id)
	return nil
}

// List returns a page of admins ordered by name
func (r *AdminRepository) List(_ context.Context, opts repositories.ListOptions) ([]*models.Admin, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []*models.Admin{}
	for _, a := range r.s.admins {
		if helpers.ContainsFold(opts.Search, a.Name, a.Email) {
			matched = append(matched, cloneAdmin(a))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, opts), int64(len(matched)), nil
}

// FacultyRepository is the in-memory faculty collection
type FacultyRepository struct{ s *store }

func cloneFaculty(f *models.Faculty) *models.Faculty {
	c := *f
	c.Account = nil
	return &c
}

// Create inserts a new faculty profile
func (r *FacultyRepository) Create(_ context.Context, faculty *models.Faculty) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.faculty {
		if strings.EqualFold(existing.Email, faculty.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
		if existing.AccountID == faculty.AccountID {
			return apperrors.ErrConflict
		}
	}
	now := time.Now()
	faculty.ID = r.s.id("faculty")
	faculty.CreatedAt, faculty.UpdatedAt = now, now
	r.s.faculty[faculty.ID] = cloneFaculty(faculty)
	return nil
}

// GetByID retrieves a faculty member by internal id
func (r *FacultyRepository) GetByID(_ context.Context, id int64) (*models.Faculty, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.faculty[id]
	if !ok {
		return nil, apperrors.ErrFacultyNotFound
	}
	return cloneFaculty(f), nil
}

// GetByAccountID retrieves the faculty profile of an account
func (r *FacultyRepository) GetByAccountID(_ context.Context, accountID int64) (*models.Faculty, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, f := range r.s.faculty {
		if f.AccountID == accountID {
			return cloneFaculty(f), nil
		}
	}
	return nil, apperrors.ErrFacultyNotFound
}

// Delete removes a faculty profile
func (r *FacultyRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.faculty[id]; !ok {
		return apperrors.ErrFacultyNotFound
	}
	delete(r.s.faculty, id)
	return nil
}

// List returns a page of faculty ordered by name
func (r *FacultyRepository) List(_ context.Context, opts repositories.ListOptions) ([]*models.Faculty, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []*models.Faculty{}
	for _, f := range r.s.faculty {
		if helpers.ContainsFold(opts.Search, f.Name, f.Email, f.Department) {
			matched = append(matched, cloneFaculty(f))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, opts), int64(len(matched)), nil
}
