package employees

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/enums"
	"github.com/angelmondragon/recruitdesk-backend/pkg/followup"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
)

const defaultDirectoryTTL = 15 * time.Minute

// Entry is the cached, credential-free view of an employee.
type Entry struct {
	ID          uuid.UUID          `json:"id"`
	Code        string             `json:"code"`
	DisplayName string             `json:"display_name"`
	Role        enums.EmployeeRole `json:"role"`
	Active      bool               `json:"active"`
}

// Executive converts the entry into the engine's identity type.
func (e Entry) Executive() followup.Executive {
	return followup.Executive{
		ID:          e.ID.String(),
		Code:        e.Code,
		DisplayName: e.DisplayName,
		Active:      e.Active,
	}
}

func entryFromModel(e models.Employee) Entry {
	return Entry{
		ID:          e.ID,
		Code:        NormalizeCode(e.Code),
		DisplayName: e.DisplayName,
		Role:        e.Role,
		Active:      e.Active,
	}
}

type employeeLister interface {
	ListAll(ctx context.Context) ([]models.Employee, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DirectoryKey(parts ...string) string
}

// Directory resolves employee ids and codes to names. It keeps an in-process
// snapshot backed by a shared Redis copy and is handed to the services that
// need it; nothing reads it through package state.
type Directory struct {
	source employeeLister
	cache  cacheStore
	logg   *logger.Logger
	ttl    time.Duration
	clock  func() time.Time

	mu       sync.RWMutex
	byID     map[uuid.UUID]Entry
	byCode   map[string]Entry
	loadedAt time.Time
}

// NewDirectory builds a directory. cache may be nil, in which case only the
// in-process snapshot is used.
func NewDirectory(source employeeLister, cache cacheStore, ttl time.Duration, logg *logger.Logger) (*Directory, error) {
	if source == nil {
		return nil, errors.New("employee source required")
	}
	if ttl <= 0 {
		ttl = defaultDirectoryTTL
	}
	return &Directory{
		source: source,
		cache:  cache,
		logg:   logg,
		ttl:    ttl,
		clock:  time.Now,
	}, nil
}

// Lookup resolves an employee by id. A miss forces one reload so freshly
// created employees resolve before the snapshot expires.
func (d *Directory) Lookup(ctx context.Context, id uuid.UUID) (Entry, bool, error) {
	return d.find(ctx, func() (Entry, bool) {
		entry, ok := d.byID[id]
		return entry, ok
	})
}

// LookupCode resolves an employee by executive code, case-insensitively.
func (d *Directory) LookupCode(ctx context.Context, code string) (Entry, bool, error) {
	key := NormalizeCode(code)
	if key == "" {
		return Entry{}, false, nil
	}
	return d.find(ctx, func() (Entry, bool) {
		entry, ok := d.byCode[key]
		return entry, ok
	})
}

// DisplayName returns the name for code, or code itself when unknown.
func (d *Directory) DisplayName(ctx context.Context, code string) string {
	entry, ok, err := d.LookupCode(ctx, code)
	if err != nil || !ok || entry.DisplayName == "" {
		return code
	}
	return entry.DisplayName
}

// Executives lists active employees sorted by display name for assignment pickers.
func (d *Directory) Executives(ctx context.Context) ([]Entry, error) {
	if err := d.ensure(ctx, false); err != nil {
		return nil, err
	}
	d.mu.RLock()
	out := make([]Entry, 0, len(d.byID))
	for _, entry := range d.byID {
		if entry.Active {
			out = append(out, entry)
		}
	}
	d.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName == out[j].DisplayName {
			return out[i].Code < out[j].Code
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return out, nil
}

// Invalidate drops the in-process snapshot and the shared copy.
func (d *Directory) Invalidate(ctx context.Context) error {
	d.mu.Lock()
	d.byID = nil
	d.byCode = nil
	d.loadedAt = time.Time{}
	d.mu.Unlock()
	if d.cache == nil {
		return nil
	}
	return d.cache.Del(ctx, d.cacheKey())
}

// Warm reloads from the database and republishes the shared copy.
func (d *Directory) Warm(ctx context.Context) (int, error) {
	if err := d.ensure(ctx, true); err != nil {
		return 0, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID), nil
}

func (d *Directory) find(ctx context.Context, get func() (Entry, bool)) (Entry, bool, error) {
	if err := d.ensure(ctx, false); err != nil {
		return Entry{}, false, err
	}
	d.mu.RLock()
	entry, ok := get()
	d.mu.RUnlock()
	if ok {
		return entry, true, nil
	}
	if err := d.ensure(ctx, true); err != nil {
		return Entry{}, false, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok = get()
	return entry, ok, nil
}

func (d *Directory) ensure(ctx context.Context, force bool) error {
	if !force && d.fresh() {
		return nil
	}
	if !force {
		if entries, ok := d.readShared(ctx); ok {
			d.store(entries)
			return nil
		}
	}
	rows, err := d.source.ListAll(ctx)
	if err != nil {
		return err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromModel(row))
	}
	d.store(entries)
	d.writeShared(ctx, entries)
	return nil
}

func (d *Directory) fresh() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byID != nil && d.clock().Sub(d.loadedAt) < d.ttl
}

func (d *Directory) store(entries []Entry) {
	byID := make(map[uuid.UUID]Entry, len(entries))
	byCode := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
		byCode[NormalizeCode(entry.Code)] = entry
	}
	d.mu.Lock()
	d.byID = byID
	d.byCode = byCode
	d.loadedAt = d.clock()
	d.mu.Unlock()
}

func (d *Directory) readShared(ctx context.Context) ([]Entry, bool) {
	if d.cache == nil {
		return nil, false
	}
	raw, err := d.cache.Get(ctx, d.cacheKey())
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			d.warn(ctx, "directory cache read failed", err)
		}
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		d.warn(ctx, "directory cache payload invalid", err)
		return nil, false
	}
	return entries, true
}

func (d *Directory) writeShared(ctx context.Context, entries []Entry) {
	if d.cache == nil {
		return
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		d.warn(ctx, "directory cache encode failed", err)
		return
	}
	if err := d.cache.Set(ctx, d.cacheKey(), string(payload), d.ttl); err != nil {
		d.warn(ctx, "directory cache write failed", err)
	}
}

func (d *Directory) cacheKey() string {
	return d.cache.DirectoryKey("employees")
}

func (d *Directory) warn(ctx context.Context, msg string, err error) {
	if d.logg == nil {
		return
	}
	d.logg.Warn(d.logg.WithField(ctx, "error", err.Error()), msg)
}
