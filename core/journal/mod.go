// Package journal implements the bounded per-election logs of the contracts.
//
// Slots are assigned by a monotonic counter. Once the capacity of an election
// is reached nothing else can be written for it, and entries are never
// reclaimed.
package journal

import (
	"encoding/binary"
	"encoding/json"

	"go.dedis.ch/zktally/core/election"
	"go.dedis.ch/zktally/core/store"
	"golang.org/x/xerrors"
)

// ErrFull is returned when the log of an election has no free slot left.
var ErrFull = xerrors.New("log full")

// Entry is a log entry of an election.
type Entry struct {
	Slot     uint64 `json:"slot"`
	Action   string `json:"action"`
	Detail   []byte `json:"detail,omitempty"`
	Height   uint64 `json:"height"`
	Resolved bool   `json:"resolved,omitempty"`
}

// Journal is a bounded log namespace.
type Journal struct {
	name     string
	capacity uint64
}

// New returns a journal with the given name that accepts at most capacity
// entries per election.
func New(name string, capacity uint64) Journal {
	return Journal{
		name:     name,
		capacity: capacity,
	}
}

// Capacity returns the maximum number of entries per election.
func (j Journal) Capacity() uint64 {
	return j.capacity
}

// Len returns the number of entries written for the election.
func (j Journal) Len(r store.Readable, id election.ID) (uint64, error) {
	value, err := r.Get(j.counterKey(id))
	if err != nil {
		return 0, xerrors.Errorf("failed to read counter: %v", err)
	}

	if len(value) != 8 {
		return 0, nil
	}

	return binary.BigEndian.Uint64(value), nil
}

// Append writes a new entry in the first free slot of the election and
// returns the slot.
func (j Journal) Append(snap store.Snapshot, id election.ID, action string,
	detail []byte, height uint64) (uint64, error) {

	slot, err := j.Len(snap, id)
	if err != nil {
		return 0, err
	}

	if slot >= j.capacity {
		return 0, xerrors.Errorf("election %d has %d entries: %w", id, slot, ErrFull)
	}

	entry := Entry{
		Slot:   slot,
		Action: action,
		Detail: detail,
		Height: height,
	}

	err = j.write(snap, id, entry)
	if err != nil {
		return 0, err
	}

	counter := make([]byte, 8)
	binary.BigEndian.PutUint64(counter, slot+1)

	err = snap.Set(j.counterKey(id), counter)
	if err != nil {
		return 0, xerrors.Errorf("failed to write counter: %v", err)
	}

	return slot, nil
}

// Get returns the entry of the slot if it exists.
func (j Journal) Get(r store.Readable, id election.ID, slot uint64) (Entry, bool, error) {
	value, err := r.Get(j.entryKey(id, slot))
	if err != nil {
		return Entry{}, false, xerrors.Errorf("failed to read entry: %v", err)
	}

	if value == nil {
		return Entry{}, false, nil
	}

	var entry Entry

	err = json.Unmarshal(value, &entry)
	if err != nil {
		return Entry{}, false, xerrors.Errorf("failed to unmarshal entry: %v", err)
	}

	return entry, true, nil
}

// List returns every entry of the election in slot order.
func (j Journal) List(r store.Readable, id election.ID) ([]Entry, error) {
	n, err := j.Len(r, id)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, n)

	for slot := uint64(0); slot < n; slot++ {
		entry, found, err := j.Get(r, id, slot)
		if err != nil {
			return nil, err
		}

		if found {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// MarkResolved sets the resolved flag of the entry. The slot stays in use.
func (j Journal) MarkResolved(snap store.Snapshot, id election.ID, slot uint64) error {
	entry, found, err := j.Get(snap, id, slot)
	if err != nil {
		return err
	}

	if !found {
		return xerrors.Errorf("entry %d of election %d not found", slot, id)
	}

	entry.Resolved = true

	return j.write(snap, id, entry)
}

func (j Journal) write(snap store.Snapshot, id election.ID, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return xerrors.Errorf("failed to marshal entry: %v", err)
	}

	err = snap.Set(j.entryKey(id, entry.Slot), data)
	if err != nil {
		return xerrors.Errorf("failed to write entry: %v", err)
	}

	return nil
}

func (j Journal) counterKey(id election.ID) []byte {
	key := make([]byte, 0, len(j.name)+9)
	key = append(key, j.name...)
	key = append(key, 'n')

	return binary.BigEndian.AppendUint64(key, uint64(id))
}

func (j Journal) entryKey(id election.ID, slot uint64) []byte {
	key := make([]byte, 0, len(j.name)+17)
	key = append(key, j.name...)
	key = append(key, 'e')
	key = binary.BigEndian.AppendUint64(key, uint64(id))

	return binary.BigEndian.AppendUint64(key, slot)
}
