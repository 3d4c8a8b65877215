package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

const memorySessionURLPrefix = "https://checkout.local/pay/"

// MemoryGateway keeps sessions in process memory.
// It serves local runs without a Stripe account and tests.
type MemoryGateway struct {
	mu          sync.Mutex
	sessions    map[string]core.CheckoutSession
	charges     []core.Charge
	retrieved   []string
	createErr   error
	retrieveErr error
	seq         int
}

// NewMemoryGateway creates an empty MemoryGateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{sessions: make(map[string]core.CheckoutSession)}
}

// CreateSession opens an unpaid session and records the charge.
func (g *MemoryGateway) CreateSession(_ context.Context, charge core.Charge) (core.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.createErr != nil {
		return core.CheckoutSession{}, g.createErr
	}

	g.seq++
	id := fmt.Sprintf("cs_local_%d", g.seq)
	session := core.CheckoutSession{
		ID:            id,
		URL:           memorySessionURLPrefix + id,
		Status:        core.SessionStatusOpen,
		PaymentStatus: core.SessionPaymentUnpaid,
	}

	g.sessions[id] = session
	g.charges = append(g.charges, charge)

	return session, nil
}

// RetrieveSession returns the current state of a session.
func (g *MemoryGateway) RetrieveSession(_ context.Context, sessionID string) (core.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.retrieved = append(g.retrieved, sessionID)

	if g.retrieveErr != nil {
		return core.CheckoutSession{}, g.retrieveErr
	}

	session, ok := g.sessions[sessionID]
	if !ok {
		return core.CheckoutSession{}, fmt.Errorf("%w: no such session %q", core.ErrUpstreamGateway, sessionID)
	}

	return session, nil
}

// MarkPaid completes a session as paid.
func (g *MemoryGateway) MarkPaid(sessionID string) {
	g.update(sessionID, core.SessionStatusComplete, core.SessionPaymentPaid)
}

// MarkExpired lets a session lapse without payment.
func (g *MemoryGateway) MarkExpired(sessionID string) {
	g.update(sessionID, core.SessionStatusExpired, core.SessionPaymentUnpaid)
}

// FailCreateWith makes every following CreateSession call fail with err; nil resets it.
func (g *MemoryGateway) FailCreateWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.createErr = err
}

// FailRetrieveWith makes every following RetrieveSession call fail with err; nil resets it.
func (g *MemoryGateway) FailRetrieveWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.retrieveErr = err
}

// Charges returns the charges of all created sessions in creation order.
func (g *MemoryGateway) Charges() []core.Charge {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]core.Charge(nil), g.charges...)
}

// Retrieved returns the session ids that were asked for.
func (g *MemoryGateway) Retrieved() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]string(nil), g.retrieved...)
}

func (g *MemoryGateway) update(sessionID, status, paymentStatus string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	session, ok := g.sessions[sessionID]
	if !ok {
		return
	}

	session.Status = status
	session.PaymentStatus = paymentStatus
	g.sessions[sessionID] = session
}
