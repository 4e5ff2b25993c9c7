package tradebook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Side is the direction of a trade.
type Side int

const (
	// Buy acquires shares.
	Buy Side = iota + 1
	// Sell disposes of shares.
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseSide parses a trade side. Broker statements use the French labels
// "Achat" and "Vente", they are accepted as well.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "achat":
		return Buy, nil
	case "sell", "vente":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown trade side: %q", s)
	}
}

func (s Side) MarshalJSON() ([]byte, error) {
	if s != Buy && s != Sell {
		return nil, fmt.Errorf("cannot marshal trade side %d", int(s))
	}
	return json.Marshal(s.String())
}

func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := ParseSide(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
