package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/manageros-console/internal/domain"
	"go.uber.org/zap"
)

type fakeExceptionRepo struct {
	byID        map[string]*domain.Exception
	transitions []domain.ExceptionStatus
	err         error
}

func (f *fakeExceptionRepo) GetExceptionByID(ctx context.Context, orgID, id string) (*domain.Exception, error) {
	e, ok := f.byID[id]
	if !ok || e.OrganizationID != orgID {
		return nil, nil
	}
	return e, nil
}

func (f *fakeExceptionRepo) FindExceptions(ctx context.Context, orgID string, filter domain.ExceptionFilter) ([]*domain.Exception, error) {
	out := make([]*domain.Exception, 0)
	for _, e := range f.byID {
		if e.OrganizationID != orgID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && e.Severity != filter.Severity {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeExceptionRepo) TransitionStatus(ctx context.Context, orgID, id string, next domain.ExceptionStatus) error {
	if f.err != nil {
		return f.err
	}
	f.transitions = append(f.transitions, next)
	return nil
}

func activeException(id string) *domain.Exception {
	return &domain.Exception{ID: id, OrganizationID: "org-1", Status: domain.ExceptionActive}
}

func TestExceptionTransitions_MapToRepoStatuses(t *testing.T) {
	repo := &fakeExceptionRepo{byID: map[string]*domain.Exception{
		"exc-1": activeException("exc-1"),
		"exc-2": activeException("exc-2"),
		"exc-3": activeException("exc-3"),
	}}
	svc := NewExceptionService(repo, testRedis(t), zap.NewNop())
	caller := memberCaller() // переходы доступны любому члену организации

	require.NoError(t, svc.Acknowledge(context.Background(), caller, "exc-1"))
	require.NoError(t, svc.Ignore(context.Background(), caller, "exc-2"))
	require.NoError(t, svc.Resolve(context.Background(), caller, "exc-3"))

	assert.Equal(t, []domain.ExceptionStatus{
		domain.ExceptionAcknowledged,
		domain.ExceptionIgnored,
		domain.ExceptionResolved,
	}, repo.transitions)
}

func TestExceptionTransition_ProcessedRejectedBeforeWrite(t *testing.T) {
	repo := &fakeExceptionRepo{byID: map[string]*domain.Exception{
		"exc-1": {ID: "exc-1", OrganizationID: "org-1", Status: domain.ExceptionAcknowledged},
	}}
	svc := NewExceptionService(repo, testRedis(t), zap.NewNop())

	// Конечный автомат отбивает обработанную запись еще в сервисе
	err := svc.Resolve(context.Background(), memberCaller(), "exc-1")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.Empty(t, repo.transitions) // до UPDATE дойти не должны
}

func TestExceptionTransition_MissingIsNotFound(t *testing.T) {
	repo := &fakeExceptionRepo{byID: map[string]*domain.Exception{}}
	svc := NewExceptionService(repo, testRedis(t), zap.NewNop())

	err := svc.Acknowledge(context.Background(), memberCaller(), "exc-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExceptionTransition_WrapsRepoError(t *testing.T) {
	// Запись активна на чтении, но UPDATE проиграл гонку другому решению
	repo := &fakeExceptionRepo{
		byID: map[string]*domain.Exception{"exc-1": activeException("exc-1")},
		err:  domain.ErrAlreadyProcessed,
	}
	svc := NewExceptionService(repo, testRedis(t), zap.NewNop())

	err := svc.Resolve(context.Background(), memberCaller(), "exc-1")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestExceptionGet_CrossTenantLooksLikeMissing(t *testing.T) {
	repo := &fakeExceptionRepo{byID: map[string]*domain.Exception{
		"exc-1": {ID: "exc-1", OrganizationID: "org-other", Status: domain.ExceptionActive},
	}}
	svc := NewExceptionService(repo, testRedis(t), zap.NewNop())

	exc, err := svc.Get(context.Background(), memberCaller(), "exc-1")
	require.NoError(t, err)
	assert.Nil(t, exc)

	// Переход по чужой записи тоже выглядит как "не найдено"
	err = svc.Resolve(context.Background(), memberCaller(), "exc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExceptionList_AppliesFilter(t *testing.T) {
	repo := &fakeExceptionRepo{byID: map[string]*domain.Exception{
		"exc-1": {ID: "exc-1", OrganizationID: "org-1", Status: domain.ExceptionActive, Severity: domain.SeverityUrgent},
		"exc-2": {ID: "exc-2", OrganizationID: "org-1", Status: domain.ExceptionResolved, Severity: domain.SeverityWarning},
	}}
	svc := NewExceptionService(repo, testRedis(t), zap.NewNop())

	list, err := svc.List(context.Background(), memberCaller(), domain.ExceptionFilter{Status: domain.ExceptionActive})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "exc-1", list[0].ID)
}
