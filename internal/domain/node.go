package domain

// Node represents a DHT participant: its identifier and dial address.
type Node struct {
	ID   ID     // position on the identifier ring
	Addr string // network address, e.g. "127.0.0.1:5000"
}

// Equal reports whether two node references name the same ring position.
// Two nodes with the same ID but different addresses are never expected in
// a healthy ring and are treated as equal by identity only.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.ID.Equal(o.ID)
}
