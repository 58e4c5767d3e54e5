package controlplane

import "sync"

// SubscriptionService is a named membership group advertised to the
// architect (spec.md §3, GLOSSARY "Subscription service"). Name and
// Roles are immutable after creation; Members is maintained by the
// client as subsequent state updates arrive.
type SubscriptionService struct {
	name  string
	roles map[string]struct{}

	mu      sync.RWMutex
	members map[string]struct{}
}

func newSubscriptionService(name string, roles []string) *SubscriptionService {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}
	return &SubscriptionService{
		name:    name,
		roles:   roleSet,
		members: make(map[string]struct{}),
	}
}

// Name returns the subscription service's name.
func (s *SubscriptionService) Name() string { return s.name }

// Roles returns the role set this subscription service was created
// with, as a fresh slice.
func (s *SubscriptionService) Roles() []string {
	roles := make([]string, 0, len(s.roles))
	for r := range s.roles {
		roles = append(roles, r)
	}
	return roles
}

// Members returns a snapshot of the current membership list.
func (s *SubscriptionService) Members() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]string, 0, len(s.members))
	for m := range s.members {
		members = append(members, m)
	}
	return members
}

// setMembers replaces the membership list wholesale, the shape a state
// update's subscription-service section carries.
func (s *SubscriptionService) setMembers(members []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = make(map[string]struct{}, len(members))
	for _, m := range members {
		s.members[m] = struct{}{}
	}
}

// subscriptionRegistry is the client's keyed-by-name registry, guarded
// by a single mutex for insert/lookup (spec.md §5 "Subscription-service
// registry uses a single mutex for insert/lookup").
type subscriptionRegistry struct {
	mu       sync.Mutex
	services map[string]*SubscriptionService
}

func newSubscriptionRegistry() *subscriptionRegistry {
	return &subscriptionRegistry{services: make(map[string]*SubscriptionService)}
}

// getOrCreate returns the existing service for name, or creates one and
// reports created=true so the caller can enqueue the registration
// event exactly once per name per process.
func (r *subscriptionRegistry) getOrCreate(name string, roles []string) (svc *SubscriptionService, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.services[name]; ok {
		return existing, false
	}
	svc = newSubscriptionService(name, roles)
	r.services[name] = svc
	return svc, true
}

// lookup returns the service for name without creating one.
func (r *subscriptionRegistry) lookup(name string) (*SubscriptionService, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[name]
	return svc, ok
}
