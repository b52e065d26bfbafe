package geohash

import (
	"fmt"
	"strings"
)

// Neighbor tables indexed by direction then by geohash length parity. Cells
// alternate orientation between odd and even lengths, so each direction
// carries one permutation of the alphabet per parity.
var neighbourTable = map[string][2]string{
	"n": {"p0r21436x8zb9dcf5h7kjnmqesgutwvy", "bc01fg45238967deuvhjyznpkmstqrwx"},
	"s": {"14365h7k9dcfesgujnmqp0r2twvyx8zb", "238967debc01fg45kmstqrwxuvhjyznp"},
	"e": {"bc01fg45238967deuvhjyznpkmstqrwx", "p0r21436x8zb9dcf5h7kjnmqesgutwvy"},
	"w": {"238967debc01fg45kmstqrwxuvhjyznp", "14365h7k9dcfesgujnmqp0r2twvyx8zb"},
}

// Characters that sit on the edge of their parent cell in a given direction.
// Stepping over one of these carries into the adjacent parent cell.
var borderTable = map[string][2]string{
	"n": {"prxz", "bcfguvyz"},
	"s": {"028b", "0145hjnp"},
	"e": {"bcfguvyz", "prxz"},
	"w": {"0145hjnp", "028b"},
}

// Neighbours holds the geohashes of the 8 cells surrounding a geohash.
type Neighbours struct {
	N  string `json:"n"`
	NE string `json:"ne"`
	E  string `json:"e"`
	SE string `json:"se"`
	S  string `json:"s"`
	SW string `json:"sw"`
	W  string `json:"w"`
	NW string `json:"nw"`
}

// Adjacent returns the geohash of the cell adjacent in the given direction,
// one of "n", "s", "e" or "w" (case-insensitive). When the last character
// sits on a border the parent is stepped in the same direction first, like a
// carry in positional addition.
//
// A length-1 geohash on a border is resolved by bare table lookup with no
// domain validation, so stepping past a pole or across the antimeridian
// yields a cell from the far side rather than an error.
func Adjacent(hash, direction string) (string, error) {
	if hash == "" {
		return "", fmt.Errorf("%w: empty string", ErrInvalidGeohash)
	}
	hash = strings.ToLower(hash)
	direction = strings.ToLower(direction)

	neighbour, ok := neighbourTable[direction]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}

	lastCh := hash[len(hash)-1:]
	parent := hash[:len(hash)-1]
	parity := len(hash) % 2

	pos := strings.Index(neighbour[parity], lastCh)
	if pos < 0 {
		return "", fmt.Errorf("%w: character %q", ErrInvalidGeohash, lastCh)
	}

	if strings.Contains(borderTable[direction][parity], lastCh) && parent != "" {
		var err error
		parent, err = Adjacent(parent, direction)
		if err != nil {
			return "", err
		}
	}

	return parent + string(alphabet[pos]), nil
}

// GetNeighbours returns all 8 surrounding cells. Diagonals are composed from
// two orthogonal steps, north/south first.
func GetNeighbours(hash string) (Neighbours, error) {
	n, err := Adjacent(hash, "n")
	if err != nil {
		return Neighbours{}, err
	}
	s, err := Adjacent(hash, "s")
	if err != nil {
		return Neighbours{}, err
	}
	e, err := Adjacent(hash, "e")
	if err != nil {
		return Neighbours{}, err
	}
	w, err := Adjacent(hash, "w")
	if err != nil {
		return Neighbours{}, err
	}
	ne, err := Adjacent(n, "e")
	if err != nil {
		return Neighbours{}, err
	}
	se, err := Adjacent(s, "e")
	if err != nil {
		return Neighbours{}, err
	}
	sw, err := Adjacent(s, "w")
	if err != nil {
		return Neighbours{}, err
	}
	nw, err := Adjacent(n, "w")
	if err != nil {
		return Neighbours{}, err
	}

	return Neighbours{N: n, NE: ne, E: e, SE: se, S: s, SW: sw, W: w, NW: nw}, nil
}
