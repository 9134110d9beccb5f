package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// stubAlarmStore is an in-memory AlarmStore for service tests.
type stubAlarmStore struct {
	mu     sync.Mutex
	alarms map[string]Alarm

	createErr error
	updateErr error
	getErr    error
}

func newStubAlarmStore(alarms ...Alarm) *stubAlarmStore {
	store := &stubAlarmStore{alarms: make(map[string]Alarm)}
	for _, alarm := range alarms {
		store.alarms[alarm.ID] = alarm
	}
	return store
}

func (s *stubAlarmStore) CreateAlarm(_ context.Context, alarm Alarm) (Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return Alarm{}, s.createErr
	}
	if _, exists := s.alarms[alarm.ID]; exists {
		return Alarm{}, fmt.Errorf("duplicate alarm id %s", alarm.ID)
	}
	s.alarms[alarm.ID] = alarm
	return alarm, nil
}

func (s *stubAlarmStore) GetAlarm(_ context.Context, id string) (Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Alarm{}, s.getErr
	}
	alarm, ok := s.alarms[id]
	if !ok {
		return Alarm{}, ErrNotFound
	}
	return alarm, nil
}

func (s *stubAlarmStore) UpdateAlarm(_ context.Context, alarm Alarm) (Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return Alarm{}, s.updateErr
	}
	if _, ok := s.alarms[alarm.ID]; !ok {
		return Alarm{}, ErrNotFound
	}
	s.alarms[alarm.ID] = alarm
	return alarm, nil
}

func (s *stubAlarmStore) DeleteAlarm(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alarms[id]; !ok {
		return ErrNotFound
	}
	delete(s.alarms, id)
	return nil
}

func (s *stubAlarmStore) ListAlarms(_ context.Context) ([]Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Alarm, 0, len(s.alarms))
	for _, alarm := range s.alarms {
		list = append(list, alarm)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// stubMappingStore is an in-memory MappingStore keyed by alarm id.
type stubMappingStore struct {
	mu       sync.Mutex
	mappings map[string]ScheduleMapping

	upsertErr error
	deleteErr error
}

func newStubMappingStore() *stubMappingStore {
	return &stubMappingStore{mappings: make(map[string]ScheduleMapping)}
}

func (s *stubMappingStore) UpsertMapping(_ context.Context, mapping ScheduleMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.mappings[mapping.AlarmID] = mapping
	return nil
}

func (s *stubMappingStore) GetMapping(_ context.Context, alarmID string) (ScheduleMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mapping, ok := s.mappings[alarmID]
	if !ok {
		return ScheduleMapping{}, ErrNotFound
	}
	return mapping, nil
}

func (s *stubMappingStore) DeleteMapping(_ context.Context, alarmID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.mappings, alarmID)
	return nil
}

func (s *stubMappingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mappings)
}

// stubNotifier records registered wake requests and issues sequential handles.
type stubNotifier struct {
	mu         sync.Mutex
	sequence   int
	registered map[string]time.Time
	cancelled  []string

	registerErr error
	cancelErr   error
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{registered: make(map[string]time.Time)}
}

func (n *stubNotifier) RegisterWake(_ context.Context, at time.Time, _ WakePayload) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.registerErr != nil {
		return "", n.registerErr
	}
	n.sequence++
	id := fmt.Sprintf("wake-%d", n.sequence)
	n.registered[id] = at
	return id, nil
}

func (n *stubNotifier) CancelWake(_ context.Context, externalID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, externalID)
	if n.cancelErr != nil {
		return n.cancelErr
	}
	delete(n.registered, externalID)
	return nil
}

func (n *stubNotifier) activeCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.registered)
}

// stubPlayer records Start/Stop calls.
type stubPlayer struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (p *stubPlayer) Start(bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts++
}

func (p *stubPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

// stubScheduler records Schedule/Cancel interactions for alarm and ring
// service tests that do not need a full ScheduleService.
type stubScheduler struct {
	mu        sync.Mutex
	scheduled []Alarm
	cancelled []string

	scheduleErr error
	cancelErr   error
}

func (s *stubScheduler) Schedule(_ context.Context, alarm Alarm) (*ScheduleMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduleErr != nil {
		return nil, s.scheduleErr
	}
	if !alarm.Enabled {
		return nil, nil
	}
	s.scheduled = append(s.scheduled, alarm)
	return &ScheduleMapping{AlarmID: alarm.ID, ExternalID: "stub"}, nil
}

func (s *stubScheduler) Cancel(_ context.Context, alarmID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelErr != nil {
		return s.cancelErr
	}
	s.cancelled = append(s.cancelled, alarmID)
	return nil
}

func (s *stubScheduler) scheduledIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.scheduled))
	for _, alarm := range s.scheduled {
		ids = append(ids, alarm.ID)
	}
	return ids
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	counter := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}
