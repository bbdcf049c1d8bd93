// Package memory provides an in-process Store implementation with the same
// compare-and-set semantics as the postgres store. Used in tests and
// single-node development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"wellness-scheduler/internal/models"
	"wellness-scheduler/internal/service"
	"wellness-scheduler/internal/storage"
	"wellness-scheduler/pkg/response"
)

type slotKey struct {
	PsychologistID string
	Unix           int64
}

type Memory struct {
	mu            sync.Mutex
	slots         map[string]*models.Slot
	slotIndex     map[slotKey]string
	bookings      map[string]*models.Booking
	bookingByIdem map[string]string
	holidays      map[string]*models.Holiday
	limits        map[string]*models.BookingLimit
}

func New() *Memory {
	return &Memory{
		slots:         make(map[string]*models.Slot),
		slotIndex:     make(map[slotKey]string),
		bookings:      make(map[string]*models.Booking),
		bookingByIdem: make(map[string]string),
		holidays:      make(map[string]*models.Holiday),
		limits:        make(map[string]*models.BookingLimit),
	}
}

// memTx holds the store lock for its lifetime and keeps an undo log so a
// rollback restores every record the transaction touched.
type memTx struct {
	m    *Memory
	undo []func()
	done bool
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.undo = nil
	t.m.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.m.mu.Unlock()
	return nil
}

func (m *Memory) BeginTx(_ context.Context) (storage.Tx, error) {
	m.mu.Lock()
	return &memTx{m: m}, nil
}

// enter acquires the store for one operation. With a transaction the lock is
// already held; mutations then register their undo on it.
func (m *Memory) enter(tx storage.Tx) (*memTx, func()) {
	if tx == nil {
		m.mu.Lock()
		return nil, m.mu.Unlock
	}
	return tx.(*memTx), func() {}
}

// #### slots ####

func (m *Memory) CreateSlot(_ context.Context, tx storage.Tx, slot *models.Slot) (string, bool, error) {
	t, release := m.enter(tx)
	defer release()

	key := slotKey{PsychologistID: slot.PsychologistID, Unix: slot.TimeSlot.Unix()}
	if _, exists := m.slotIndex[key]; exists {
		return "", false, nil
	}

	stored := *slot
	stored.ID = uuid.NewString()
	m.slots[stored.ID] = &stored
	m.slotIndex[key] = stored.ID

	if t != nil {
		id := stored.ID
		t.undo = append(t.undo, func() {
			delete(m.slots, id)
			delete(m.slotIndex, key)
		})
	}

	return stored.ID, true, nil
}

func (m *Memory) GetSlot(_ context.Context, id string) (*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.slots[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	copied := *slot
	return &copied, nil
}

func (m *Memory) GetSlotByTime(_ context.Context, psychologistID string, at time.Time) (*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.slotIndex[slotKey{PsychologistID: psychologistID, Unix: at.Unix()}]
	if !ok {
		return nil, response.ErrNotFound
	}
	copied := *m.slots[id]
	return &copied, nil
}

func (m *Memory) ListSlots(_ context.Context, psychologistID string, from, to *time.Time) ([]*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*models.Slot
	for _, slot := range m.slots {
		if slot.PsychologistID != psychologistID {
			continue
		}
		if from != nil && slot.TimeSlot.Before(*from) {
			continue
		}
		if to != nil && !slot.TimeSlot.Before(*to) {
			continue
		}
		copied := *slot
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimeSlot.Before(result[j].TimeSlot)
	})
	return result, nil
}

func (m *Memory) TransitionSlot(_ context.Context, tx storage.Tx, slotID string, from, to models.SlotStatus) error {
	t, release := m.enter(tx)
	defer release()

	slot, ok := m.slots[slotID]
	if !ok || slot.Status != from {
		return response.ErrConflict
	}

	slot.Status = to
	if t != nil {
		t.undo = append(t.undo, func() { slot.Status = from })
	}

	return nil
}

func (m *Memory) ToggleDay(_ context.Context, psychologistID string, day time.Time, status models.SlotStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var matched []*models.Slot
	for _, slot := range m.slots {
		if slot.PsychologistID != psychologistID {
			continue
		}
		if slot.TimeSlot.Before(dayStart) || !slot.TimeSlot.Before(dayEnd) {
			continue
		}
		if slot.Status == models.SlotBooked {
			return 0, response.ErrSlotBooked
		}
		matched = append(matched, slot)
	}

	for _, slot := range matched {
		slot.Status = status
	}
	return len(matched), nil
}

func (m *Memory) CountBookedSlots(_ context.Context, psychologistID string, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, slot := range m.slots {
		if slot.PsychologistID != psychologistID || slot.Status != models.SlotBooked {
			continue
		}
		if slot.TimeSlot.Before(from) || !slot.TimeSlot.Before(to) {
			continue
		}
		count++
	}
	return count, nil
}

// #### bookings ####

func (m *Memory) CreateBooking(_ context.Context, tx storage.Tx, booking *models.Booking) (string, error) {
	t, release := m.enter(tx)
	defer release()

	if booking.IdempotencyKey != nil {
		if _, exists := m.bookingByIdem[*booking.IdempotencyKey]; exists {
			return "", response.ErrConflict
		}
	}

	stored := *booking
	stored.ID = uuid.NewString()
	m.bookings[stored.ID] = &stored
	if stored.IdempotencyKey != nil {
		m.bookingByIdem[*stored.IdempotencyKey] = stored.ID
	}

	if t != nil {
		id := stored.ID
		key := stored.IdempotencyKey
		t.undo = append(t.undo, func() {
			delete(m.bookings, id)
			if key != nil {
				delete(m.bookingByIdem, *key)
			}
		})
	}

	return stored.ID, nil
}

func (m *Memory) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking, ok := m.bookings[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (m *Memory) GetBookingByIdempotencyKey(_ context.Context, key string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.bookingByIdem[key]
	if !ok {
		return nil, response.ErrNotFound
	}
	copied := *m.bookings[id]
	return &copied, nil
}

func (m *Memory) ListBookings(_ context.Context, filters *service.BookingFilters) ([]*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*models.Booking
	for _, booking := range m.bookings {
		if filters != nil {
			if filters.ClientID != nil && booking.ClientID != *filters.ClientID {
				continue
			}
			if filters.PsychologistID != nil && booking.PsychologistID != *filters.PsychologistID {
				continue
			}
			if filters.Status != nil && booking.Status != *filters.Status {
				continue
			}
			if filters.From != nil && booking.TimeSlot.Before(*filters.From) {
				continue
			}
			if filters.To != nil && !booking.TimeSlot.Before(*filters.To) {
				continue
			}
		}
		copied := *booking
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimeSlot.Before(result[j].TimeSlot)
	})
	return result, nil
}

func (m *Memory) TransitionBooking(_ context.Context, tx storage.Tx, bookingID string, to models.BookingStatus, reason string, from ...models.BookingStatus) error {
	t, release := m.enter(tx)
	defer release()

	booking, ok := m.bookings[bookingID]
	if !ok {
		return response.ErrNotFound
	}

	allowed := false
	for _, st := range from {
		if booking.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return response.ErrConflict
	}

	prevStatus, prevReason := booking.Status, booking.CancelReason
	booking.Status = to
	if reason != "" {
		booking.CancelReason = reason
	}

	if t != nil {
		t.undo = append(t.undo, func() {
			booking.Status = prevStatus
			booking.CancelReason = prevReason
		})
	}

	return nil
}

func (m *Memory) RepointBooking(_ context.Context, tx storage.Tx, bookingID, psychologistID string, at time.Time) error {
	t, release := m.enter(tx)
	defer release()

	booking, ok := m.bookings[bookingID]
	if !ok {
		return response.ErrNotFound
	}

	prevPID, prevAt := booking.PsychologistID, booking.TimeSlot
	booking.PsychologistID = psychologistID
	booking.TimeSlot = at

	if t != nil {
		t.undo = append(t.undo, func() {
			booking.PsychologistID = prevPID
			booking.TimeSlot = prevAt
		})
	}

	return nil
}

// #### holidays ####

func (m *Memory) CreateHoliday(_ context.Context, holiday *models.Holiday) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *holiday
	stored.ID = uuid.NewString()
	m.holidays[stored.ID] = &stored
	return stored.ID, nil
}

func (m *Memory) GetHoliday(_ context.Context, id string) (*models.Holiday, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	holiday, ok := m.holidays[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	copied := *holiday
	return &copied, nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holidays[id]; !ok {
		return response.ErrNotFound
	}
	delete(m.holidays, id)
	return nil
}

func (m *Memory) ListHolidays(_ context.Context) ([]*models.Holiday, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*models.Holiday
	for _, holiday := range m.holidays {
		copied := *holiday
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (m *Memory) ListHolidaysByDate(_ context.Context, date time.Time) ([]*models.Holiday, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*models.Holiday
	for _, holiday := range m.holidays {
		sameDay := holiday.Date.Year() == date.Year() && holiday.Date.YearDay() == date.YearDay()
		recurring := holiday.RecurringAnnually &&
			holiday.Date.Month() == date.Month() && holiday.Date.Day() == date.Day()
		if sameDay || recurring {
			copied := *holiday
			result = append(result, &copied)
		}
	}
	return result, nil
}

// #### booking limits ####

func (m *Memory) GetBookingLimit(_ context.Context, psychologistID string) (*models.BookingLimit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit, ok := m.limits[psychologistID]
	if !ok {
		return nil, response.ErrNotFound
	}
	copied := *limit
	return &copied, nil
}

func (m *Memory) UpsertBookingLimit(_ context.Context, limit *models.BookingLimit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *limit
	m.limits[limit.PsychologistID] = &copied
	return nil
}
