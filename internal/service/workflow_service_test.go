package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/commerce-kit/backoffice-core/internal/domain"
	"github.com/commerce-kit/backoffice-core/internal/events"
	"github.com/commerce-kit/backoffice-core/internal/remote"
	apperrors "github.com/commerce-kit/backoffice-core/pkg/util"
)

func newTestWorkflow(t *testing.T, api *fakeCommerceAPI) (*OrderWorkflowService, *testSession) {
	t.Helper()
	ts := newTestSession(t, api, nil)
	orders := remote.NewOrdersClient(ts.sessions.Pipeline())
	workflow := NewOrderWorkflowService(orders, events.NewInMemoryDispatcher(), zap.NewNop())
	return workflow, ts
}

func login(t *testing.T, ts *testSession) *domain.Identity {
	t.Helper()
	identity, err := ts.sessions.Login(context.Background(), "staff@example.com", "correct-password")
	require.NoError(t, err)
	return identity
}

func staffIdentity() *domain.Identity {
	return &domain.Identity{ID: "op-1", Role: domain.RoleStaff, Status: domain.AccountStatusActive}
}

func adminIdentity() *domain.Identity {
	return &domain.Identity{ID: "op-9", Role: domain.RoleAdmin, Status: domain.AccountStatusActive}
}

func TestStaffShipsProcessingOrder(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	identity := login(t, ts)

	order := &domain.Order{ID: "ord-1", Status: domain.OrderStatusProcessing}
	api.mu.Lock()
	api.orderStatus = domain.OrderStatusProcessing
	api.mu.Unlock()

	updated, err := workflow.RequestTransition(context.Background(), order, domain.OrderStatusShipped, identity, TransitionPayload{})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)
	assert.Equal(t, "ord-1", updated.ID)
}

func TestCancelWithEmptyReasonFailsBeforeNetwork(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	identity := login(t, ts)

	order := &domain.Order{ID: "ord-2", Status: domain.OrderStatusPending}
	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := workflow.RequestTransition(context.Background(), order, domain.OrderStatusCancelled, identity, TransitionPayload{Reason: reason})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidPayload))
	}

	_, _, _, _, orders := api.counts()
	assert.Zero(t, orders, "invalid payload must be caught before any network call")
}

func TestCancelWithReasonSucceeds(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	identity := login(t, ts)

	order := &domain.Order{ID: "ord-3", Status: domain.OrderStatusConfirmed}
	updated, err := workflow.RequestTransition(context.Background(), order, domain.OrderStatusCancelled, identity, TransitionPayload{Reason: "customer asked"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, updated.Status)
}

func TestStaffCannotAcceptReturns(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	login(t, ts)

	order := &domain.Order{ID: "ord-4", Status: domain.OrderStatusDelivered}
	_, err := workflow.RequestTransition(context.Background(), order, domain.OrderStatusReturned, staffIdentity(), TransitionPayload{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, _, _, _, orders := api.counts()
	assert.Zero(t, orders, "role denial must be caught before any network call")
}

func TestAdminAcceptsReturn(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	login(t, ts)

	order := &domain.Order{ID: "ord-5", Status: domain.OrderStatusDelivered}
	updated, err := workflow.RequestTransition(context.Background(), order, domain.OrderStatusReturned, adminIdentity(), TransitionPayload{Note: "damaged in transit"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusReturned, updated.Status)
}

func TestNoBackwardTransition(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	login(t, ts)

	order := &domain.Order{ID: "ord-6", Status: domain.OrderStatusDelivered}
	_, err := workflow.RequestTransition(context.Background(), order, domain.OrderStatusProcessing, adminIdentity(), TransitionPayload{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeIllegalTransition))

	_, _, _, _, orders := api.counts()
	assert.Zero(t, orders)
}

func TestNilIdentityIsUnauthenticated(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, _ := newTestWorkflow(t, api)

	order := &domain.Order{ID: "ord-7", Status: domain.OrderStatusPending}
	_, err := workflow.RequestTransition(context.Background(), order, domain.OrderStatusConfirmed, nil, TransitionPayload{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
}

func TestServerRejectionSurfacesVerbatim(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	identity := login(t, ts)

	// The fake rejects shipping unless it believes the order is processing.
	api.mu.Lock()
	api.orderStatus = domain.OrderStatusPending
	api.mu.Unlock()

	order := &domain.Order{ID: "ord-8", Status: domain.OrderStatusProcessing}
	_, err := workflow.RequestTransition(context.Background(), order, domain.OrderStatusShipped, identity, TransitionPayload{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRemoteRejected))
	assert.Contains(t, err.Error(), "modified concurrently")
}

func TestTransitionRetriedOnceAfterTokenRejection(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	identity := login(t, ts)

	api.mu.Lock()
	api.orderStatus = domain.OrderStatusProcessing
	api.mu.Unlock()
	api.expireAccess()

	order := &domain.Order{ID: "ord-9", Status: domain.OrderStatusProcessing}
	updated, err := workflow.RequestTransition(context.Background(), order, domain.OrderStatusShipped, identity, TransitionPayload{})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)

	_, refresh, _, _, orders := api.counts()
	assert.Equal(t, 1, refresh)
	assert.Equal(t, 2, orders, "exactly one retry after renewal")
}

func TestSecondRejectionAfterRetryExpiresSession(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	identity := login(t, ts)
	ctx := context.Background()

	api.mu.Lock()
	api.rejectOrderCalls = true
	api.mu.Unlock()

	order := &domain.Order{ID: "ord-10", Status: domain.OrderStatusProcessing}
	_, err := workflow.RequestTransition(ctx, order, domain.OrderStatusShipped, identity, TransitionPayload{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSessionExpired))

	_, refresh, _, _, orders := api.counts()
	assert.Equal(t, 1, refresh)
	assert.Equal(t, 2, orders)

	stored, loadErr := ts.repo.LoadCredential(ctx)
	require.NoError(t, loadErr)
	assert.Nil(t, stored, "credential store must be cleared after a rejected retry")
	assert.Nil(t, ts.sessions.CurrentIdentity())
}

func TestAssignStaffIsAdminOnly(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	login(t, ts)

	order := &domain.Order{ID: "ord-11", Status: domain.OrderStatusConfirmed}
	api.mu.Lock()
	api.orderStatus = domain.OrderStatusConfirmed
	api.mu.Unlock()

	_, err := workflow.AssignStaff(context.Background(), order, "staff-7", staffIdentity())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	_, _, _, _, orders := api.counts()
	assert.Zero(t, orders)

	updated, err := workflow.AssignStaff(context.Background(), order, "staff-7", adminIdentity())
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedStaffID)
	assert.Equal(t, "staff-7", *updated.AssignedStaffID)
	assert.Equal(t, domain.OrderStatusConfirmed, updated.Status, "assignment must not change status")
}

func TestAssignStaffRequiresStaffID(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	login(t, ts)

	order := &domain.Order{ID: "ord-12", Status: domain.OrderStatusPending}
	_, err := workflow.AssignStaff(context.Background(), order, "  ", adminIdentity())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidPayload))
}

func TestGetOrderFetchesServerState(t *testing.T) {
	api := newFakeCommerceAPI(t)
	workflow, ts := newTestWorkflow(t, api)
	login(t, ts)

	api.mu.Lock()
	api.orderStatus = domain.OrderStatusShipped
	api.mu.Unlock()

	order, err := workflow.GetOrder(context.Background(), "ord-13")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
	assert.Equal(t, "ord-13", order.ID)
}
