package hist

import "strconv"

// Latencies are the average flit, packet and network latencies of a run.
type Latencies struct {
	Flit    float64 `json:"flit"`
	Packet  float64 `json:"packet"`
	Network float64 `json:"network"`
}

// Unavailable is returned when the latency report cannot be read.
var Unavailable = Latencies{Flit: -1, Packet: -1, Network: -1}

// Valid reports whether l holds measured values.
func (l Latencies) Valid() bool { return l != Unavailable }

// ReadLatencies reads a space-delimited report whose second column holds
// the flit, packet and network latency on its first three rows. Any
// failure yields [Unavailable].
func ReadLatencies(path string) Latencies {
	records, err := readCSV(path, ' ')
	if err != nil || len(records) < 3 {
		return Unavailable
	}
	var vals [3]float64
	for i := range vals {
		if len(records[i]) < 2 {
			return Unavailable
		}
		v, err := strconv.ParseFloat(records[i][1], 64)
		if err != nil {
			return Unavailable
		}
		vals[i] = v
	}
	return Latencies{Flit: vals[0], Packet: vals[1], Network: vals[2]}
}
