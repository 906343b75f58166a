// Package realtime keeps track of live socket connections and fans events
// out to them.
package realtime

import (
	"sort"
	"sync"
)

// Event names shared with the web client.
const (
	EventUser        = "user"
	EventChat        = "chat"
	EventSeenMessage = "seen-message"
	EventLeaveGroup  = "leave-gc"
)

// Conn is the part of a socket connection the directory needs.
type Conn interface {
	ID() string
	Emit(event string, v ...interface{})
}

// Presence is one entry of the online list pushed with the "user" event.
type Presence struct {
	UserID   string `json:"userId"`
	SocketID string `json:"socketId"`
}

type entry struct {
	conn   Conn
	userID string
	seq    uint64 // registration order
}

// Directory maps live connections to the users behind them. A user counts as
// online while at least one of their connections is registered, so several
// devices can be connected at once.
type Directory struct {
	mu    sync.RWMutex
	conns map[string]*entry
	seq   uint64
}

func NewDirectory() *Directory {
	return &Directory{conns: make(map[string]*entry)}
}

// Connect tracks a connection that has not announced its user yet.
// It already receives broadcasts.
func (d *Directory) Connect(conn Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.conns[conn.ID()]; !ok {
		d.conns[conn.ID()] = &entry{conn: conn}
	}
}

// Register binds conn to userID. Registering the same pair twice is a no-op.
func (d *Directory) Register(userID string, conn Conn) {
	if userID == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.conns[conn.ID()]
	if !ok {
		e = &entry{conn: conn}
		d.conns[conn.ID()] = e
	}
	if e.userID == userID {
		return
	}
	d.seq++
	e.userID = userID
	e.seq = d.seq
}

// Unregister forgets a connection and returns the user it belonged to, if any.
func (d *Directory) Unregister(connID string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.conns[connID]
	if !ok {
		return ""
	}
	delete(d.conns, connID)
	return e.userID
}

// Online lists every connected user once, with the connection they
// registered first.
func (d *Directory) Online() []Presence {
	d.mu.RLock()
	first := make(map[string]*entry)
	for id, e := range d.conns {
		if e.userID == "" {
			continue
		}
		if cur, ok := first[e.userID]; !ok || e.seq < cur.seq {
			first[e.userID] = d.conns[id]
		}
	}
	d.mu.RUnlock()

	entries := make([]*entry, 0, len(first))
	for _, e := range first {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]Presence, len(entries))
	for i, e := range entries {
		out[i] = Presence{UserID: e.userID, SocketID: e.conn.ID()}
	}
	return out
}

// IsOnline reports whether userID has a live connection.
func (d *Directory) IsOnline(userID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, e := range d.conns {
		if e.userID == userID {
			return true
		}
	}
	return false
}

// Len returns the number of tracked connections.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conns)
}

// snapshot copies the connections so emits happen without holding the lock.
func (d *Directory) snapshot(excludeConnID string) []Conn {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Conn, 0, len(d.conns))
	for id, e := range d.conns {
		if id != excludeConnID {
			out = append(out, e.conn)
		}
	}
	return out
}

// Broadcast sends event to every connection except excludeConnID.
// There is no per-recipient filtering.
func (d *Directory) Broadcast(event string, payload interface{}, excludeConnID string) {
	for _, c := range d.snapshot(excludeConnID) {
		c.Emit(event, payload)
	}
}

// EmitAll sends event to every connection.
func (d *Directory) EmitAll(event string, payload interface{}) {
	d.Broadcast(event, payload, "")
}

// Announce registers conn for userID and pushes the new online list to everybody.
func (d *Directory) Announce(conn Conn, userID string) {
	d.Register(userID, conn)
	d.EmitAll(EventUser, d.Online())
}

// Relay forwards a client event to all other connections.
func (d *Directory) Relay(from Conn, event string, payload interface{}) {
	d.Broadcast(event, payload, from.ID())
}

// Drop removes a closed connection and pushes the new online list.
func (d *Directory) Drop(connID string) {
	d.Unregister(connID)
	d.EmitAll(EventUser, d.Online())
}
