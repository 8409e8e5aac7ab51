package control

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// StatusLogger writes selected telemetry fields as CSV, one row per cycle.
type StatusLogger struct {
	w      io.Writer
	c      io.Closer
	logMap map[string]func(*StatusSnapshot) float64
	Header []string
	fmt    string
	vals   []interface{}
}

// DefaultLogMap returns the columns written by the controller's CSV log.
func DefaultLogMap() map[string]func(*StatusSnapshot) float64 {
	m := map[string]func(*StatusSnapshot) float64{
		"T":      func(s *StatusSnapshot) float64 { return s.T },
		"Mode":   func(s *StatusSnapshot) float64 { return float64(s.Mode) },
		"Thrust": func(s *StatusSnapshot) float64 { return s.Thrust },
		"Roll":   func(s *StatusSnapshot) float64 { return s.Roll },
		"Pitch":  func(s *StatusSnapshot) float64 { return s.Pitch },
		"Yaw":    func(s *StatusSnapshot) float64 { return s.Yaw },
		"RollD":  func(s *StatusSnapshot) float64 { return s.RollD },
		"PitchD": func(s *StatusSnapshot) float64 { return s.PitchD },
		"YawD":   func(s *StatusSnapshot) float64 { return s.YawD },
		"Period": func(s *StatusSnapshot) float64 { return s.Period },
	}
	for i, ax := range []string{"X", "Y", "Z"} {
		i := i
		m["Pos"+ax] = func(s *StatusSnapshot) float64 { return s.Position[i] }
		m["PosD"+ax] = func(s *StatusSnapshot) float64 { return s.PositionD[i] }
		m["ER"+ax] = func(s *StatusSnapshot) float64 { return s.AttitudeError[i] }
		m["EW"+ax] = func(s *StatusSnapshot) float64 { return s.RateError[i] }
		m["M"+ax] = func(s *StatusSnapshot) float64 { return s.Moment[i] }
		m["Rcm"+ax] = func(s *StatusSnapshot) float64 { return s.CenterOfMass[i] }
	}
	for i := 0; i < 4; i++ {
		i := i
		m[fmt.Sprintf("W%d", i+1)] = func(s *StatusSnapshot) float64 { return s.Rotors[i] }
	}
	return m
}

// NewStatusLogger creates filename and writes the CSV header.
func NewStatusLogger(filename string, logMap map[string]func(*StatusSnapshot) float64) (*StatusLogger, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, errors.Wrap(err, "create status log")
	}
	l := newStatusLogger(f, logMap)
	l.c = f
	return l, nil
}

func newStatusLogger(w io.Writer, logMap map[string]func(*StatusSnapshot) float64) *StatusLogger {
	l := &StatusLogger{w: w, logMap: logMap}

	l.Header = make([]string, 0, len(logMap))
	for k := range l.logMap {
		l.Header = append(l.Header, k)
	}
	sort.Strings(l.Header)

	fmt.Fprint(l.w, strings.Join(l.Header, ","), "\n")
	s := strings.Repeat("%f,", len(l.Header))
	l.fmt = strings.Join([]string{s[:len(s)-1], "\n"}, "")
	l.vals = make([]interface{}, len(l.Header))
	return l
}

// Publish writes one row.
func (l *StatusLogger) Publish(s *StatusSnapshot) {
	for i, k := range l.Header {
		l.vals[i] = l.logMap[k](s)
	}
	fmt.Fprintf(l.w, l.fmt, l.vals...)
}

func (l *StatusLogger) Close() error {
	if l.c == nil {
		return nil
	}
	return l.c.Close()
}
