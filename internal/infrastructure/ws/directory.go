package ws

import "sync"

// Transport is the outbound half of one participant's connection. Enqueue
// must never block; it reports false when the frame was not accepted (buffer
// full or transport already closing).
type Transport interface {
	Enqueue(msg *Message) bool
	Close() error
}

// Member is one registered connection inside a room.
type Member struct {
	ID        string
	Room      string
	Transport Transport
}

// Directory maps room keys to their current members. It holds no I/O; all
// delivery goes through the Transport references it stores. A secondary
// index from connection id to room key keeps any id in at most one room.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Member // room key -> conn id -> member
	index map[string]string             // conn id -> room key
}

func NewDirectory() *Directory {
	return &Directory{
		rooms: make(map[string]map[string]*Member),
		index: make(map[string]string),
	}
}

// Join registers the connection under roomKey, creating the room on first
// join, and returns the members present before the join. Re-joining the same
// room replaces the transport reference. If the id was registered elsewhere
// it is detached there first and prevRoom names the room it left.
func (d *Directory) Join(roomKey, connID string, t Transport) (existing []*Member, prevRoom string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cur, ok := d.index[connID]; ok && cur != roomKey {
		d.detach(cur, connID)
		prevRoom = cur
	}

	members, ok := d.rooms[roomKey]
	if !ok {
		members = make(map[string]*Member)
		d.rooms[roomKey] = members
	}

	for id, m := range members {
		if id != connID {
			existing = append(existing, m)
		}
	}

	members[connID] = &Member{ID: connID, Room: roomKey, Transport: t}
	d.index[connID] = roomKey

	return existing, prevRoom
}

// Leave removes the connection from the room. Not found is a no-op, not an
// error; the room entry is pruned when its last member leaves.
func (d *Directory) Leave(roomKey, connID string) (*Member, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, ok := d.rooms[roomKey]
	if !ok {
		return nil, false
	}

	m, ok := members[connID]
	if !ok {
		return nil, false
	}

	d.detach(roomKey, connID)
	return m, true
}

// detach must be called with the write lock held.
func (d *Directory) detach(roomKey, connID string) {
	members := d.rooms[roomKey]
	delete(members, connID)
	if len(members) == 0 {
		delete(d.rooms, roomKey)
	}
	delete(d.index, connID)
}

// Lookup resolves a specific peer in a room for targeted delivery.
func (d *Directory) Lookup(roomKey, connID string) (Transport, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, ok := d.rooms[roomKey][connID]
	if !ok {
		return nil, false
	}
	return m.Transport, true
}

// MembersExcept returns all current members of the room other than connID.
func (d *Directory) MembersExcept(roomKey, connID string) []*Member {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members := d.rooms[roomKey]
	out := make([]*Member, 0, len(members))
	for id, m := range members {
		if id != connID {
			out = append(out, m)
		}
	}
	return out
}

// RoomSize reports how many members the room currently has.
func (d *Directory) RoomSize(roomKey string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms[roomKey])
}

// Rooms reports how many rooms currently have members.
func (d *Directory) Rooms() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// Members reports the total number of registered connections.
func (d *Directory) Members() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.index)
}
