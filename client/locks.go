package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pkt.systems/wapploxx/api"
)

// Lock is a handle to one smart-lock on the controller. Descriptor fields
// (name, hardware id, cluster, disabled) come from the controller's lock
// listing and are fetched at most once per handle; live state (access time,
// open) is queried from the panel on every call and never cached.
type Lock struct {
	client *Client
	id     int

	// info is nil until the listing has been fetched or pre-populated.
	info *api.SmartloxxEntry
}

// Lock returns a handle for the lock with the given controller id. The id is
// not validated until a descriptor field is first accessed.
func (c *Client) Lock(id int) *Lock {
	return &Lock{client: c, id: id}
}

// ID returns the controller-assigned lock id.
func (l *Lock) ID() int {
	return l.id
}

// fetchInfo resolves the descriptor, fetching the lock listing on first use.
func (l *Lock) fetchInfo(ctx context.Context) (*api.SmartloxxEntry, error) {
	if l.info != nil {
		return l.info, nil
	}
	list, err := l.client.SmartloxxList(ctx)
	if err != nil {
		return nil, err
	}
	want := strconv.Itoa(l.id)
	for i := range list.List {
		if list.List[i].ID == want {
			l.info = &list.List[i]
			return l.info, nil
		}
	}
	return nil, &LockNotFoundError{ID: l.id}
}

// Name returns the lock's user-visible name.
func (l *Lock) Name(ctx context.Context) (string, error) {
	info, err := l.fetchInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

// HwID returns the lock's hardware identifier.
func (l *Lock) HwID(ctx context.Context) (string, error) {
	info, err := l.fetchInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.HwId, nil
}

// Cluster returns the lock's cluster group.
func (l *Lock) Cluster(ctx context.Context) (int, error) {
	info, err := l.fetchInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.ClusterID(), nil
}

// Disabled reports whether the lock is administratively disabled.
func (l *Lock) Disabled(ctx context.Context) (bool, error) {
	info, err := l.fetchInfo(ctx)
	if err != nil {
		return false, err
	}
	return info.IsDisabled(), nil
}

// AccessTime returns the seconds the lock remains unlocked, queried live
// from the panel. known is false when the panel does not report the lock at
// all; that is an unknown state, not an error.
func (l *Lock) AccessTime(ctx context.Context) (seconds int, known bool, err error) {
	status, err := l.client.PanelStatus(ctx)
	if err != nil {
		return 0, false, err
	}
	seconds, known = status.AccessTime(l.id)
	return seconds, known, nil
}

// IsOpen reports whether the lock is currently unlocked. A lock the panel
// does not report is considered closed.
func (l *Lock) IsOpen(ctx context.Context) (bool, error) {
	seconds, known, err := l.AccessTime(ctx)
	if err != nil {
		return false, err
	}
	return known && seconds > 0, nil
}

// Open unlocks the lock until its configured access time runs out.
func (l *Lock) Open(ctx context.Context) (api.StatusResult, error) {
	return l.client.SetRemoteAccess(ctx, l.id, api.RemoteAccessStart)
}

// Close relocks the lock immediately.
func (l *Lock) Close(ctx context.Context) (api.StatusResult, error) {
	return l.client.SetRemoteAccess(ctx, l.id, api.RemoteAccessStop)
}

// LockSnapshot flattens a lock's descriptor and live state into one record.
type LockSnapshot struct {
	ID int `json:"id"`
	// Name is the user-visible lock name.
	Name string `json:"name"`
	// Open reports whether the lock is currently unlocked.
	Open bool `json:"is_open"`
	// AccessTime is the remaining unlock time in seconds; 0 when closed or
	// when the panel does not report the lock (AccessTimeKnown false).
	AccessTime int `json:"access_time"`
	// AccessTimeKnown is false when the panel does not report the lock.
	AccessTimeKnown bool `json:"access_time_known"`
	// Disabled reports administrative disablement.
	Disabled bool `json:"disabled"`
	// HwID is the lock hardware identifier.
	HwID string `json:"hwid"`
	// Cluster is the lock's cluster group.
	Cluster int `json:"cluster"`
}

// Snapshot resolves the descriptor and live state into a LockSnapshot.
func (l *Lock) Snapshot(ctx context.Context) (LockSnapshot, error) {
	info, err := l.fetchInfo(ctx)
	if err != nil {
		return LockSnapshot{}, err
	}
	seconds, known, err := l.AccessTime(ctx)
	if err != nil {
		return LockSnapshot{}, err
	}
	return LockSnapshot{
		ID:              l.id,
		Name:            info.Name,
		Open:            known && seconds > 0,
		AccessTime:      seconds,
		AccessTimeKnown: known,
		Disabled:        info.IsDisabled(),
		HwID:            info.HwId,
		Cluster:         info.ClusterID(),
	}, nil
}

// Locks is a snapshot of the controller's lock listing taken at construction
// time from a single bulk fetch. It is not refreshed; callers needing fresh
// descriptors construct a new collection.
type Locks struct {
	client *Client
	locks  []*Lock
}

// Locks fetches the lock listing once and materialises a handle per entry,
// pre-populating each handle's descriptor so lookups cost no further HTTP
// calls. Entries with non-numeric ids are rejected as malformed.
func (c *Client) Locks(ctx context.Context) (*Locks, error) {
	list, err := c.SmartloxxList(ctx)
	if err != nil {
		return nil, err
	}
	locks := make([]*Lock, 0, len(list.List))
	for i := range list.List {
		entry := &list.List[i]
		id, err := entry.LockID()
		if err != nil {
			return nil, fmt.Errorf("wapploxx: malformed lock id %q in listing: %w", entry.ID, err)
		}
		locks = append(locks, &Lock{client: c, id: id, info: entry})
	}
	return &Locks{client: c, locks: locks}, nil
}

// Len returns the number of locks in the snapshot.
func (ls *Locks) Len() int {
	return len(ls.locks)
}

// All returns the locks in controller listing order.
func (ls *Locks) All() []*Lock {
	return ls.locks
}

// ByID returns the lock with the given id, or *LockNotFoundError when the
// snapshot has no such lock.
func (ls *Locks) ByID(id int) (*Lock, error) {
	for _, l := range ls.locks {
		if l.id == id {
			return l, nil
		}
	}
	return nil, &LockNotFoundError{ID: id}
}

// ByName returns the first lock whose name matches. Matching is
// case-insensitive unless caseSensitive is set.
func (ls *Locks) ByName(name string, caseSensitive bool) (*Lock, bool) {
	for _, l := range ls.locks {
		lockName := l.info.Name
		if caseSensitive {
			if lockName == name {
				return l, true
			}
			continue
		}
		if strings.EqualFold(lockName, name) {
			return l, true
		}
	}
	return nil, false
}

// OpenAll opens every lock in listing order, best-effort: the first failure
// aborts the sequence and is returned, leaving earlier locks actuated.
func (ls *Locks) OpenAll(ctx context.Context) error {
	for _, l := range ls.locks {
		if _, err := l.Open(ctx); err != nil {
			return fmt.Errorf("wapploxx: open lock %d: %w", l.id, err)
		}
	}
	return nil
}

// CloseAll closes every lock in listing order, best-effort: the first
// failure aborts the sequence and is returned.
func (ls *Locks) CloseAll(ctx context.Context) error {
	for _, l := range ls.locks {
		if _, err := l.Close(ctx); err != nil {
			return fmt.Errorf("wapploxx: close lock %d: %w", l.id, err)
		}
	}
	return nil
}
