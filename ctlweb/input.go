package ctlweb

import (
	"encoding/json"
	"net/http"

	"github.com/golang/geo/r3"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/westphae/quaternion"
	"go.uber.org/zap"

	"github.com/antonellabarisic/mmuav-gazebo/control"
	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

// ErrUnknownType is returned for an envelope whose type has no decoder.
var ErrUnknownType = errors.New("unknown message type")

// Envelope is the wire form of one input message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Reply is sent back for each envelope that could not be delivered.
type Reply struct {
	Error string `json:"error"`
}

type imuData struct {
	Orientation [4]float64 `json:"orientation"` // w, x, y, z
	Rate        [3]float64 `json:"rate"`
}

type twistData struct {
	Linear  [3]float64 `json:"linear"`
	Angular [3]float64 `json:"angular"`
}

type eulerData struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

func vec(a [3]float64) r3.Vector {
	return r3.Vector{X: a[0], Y: a[1], Z: a[2]}
}

// Decode turns an envelope into a controller message.
func Decode(e Envelope) (control.Message, error) {
	var (
		v   [3]float64
		msg control.Message
		err error
	)
	unmarshal := func(x interface{}) error {
		return errors.Wrapf(json.Unmarshal(e.Data, x), "decode %s", e.Type)
	}

	switch e.Type {
	case "imu":
		var d imuData
		if err = unmarshal(&d); err == nil {
			q := quaternion.Quaternion{W: d.Orientation[0], X: d.Orientation[1], Y: d.Orientation[2], Z: d.Orientation[3]}
			msg = control.IMUSample{Orientation: q, Rate: vec(d.Rate)}
		}
	case "pose":
		if err = unmarshal(&v); err == nil {
			msg = control.PoseSample{Position: vec(v)}
		}
	case "twist":
		var d twistData
		if err = unmarshal(&d); err == nil {
			msg = control.TwistSample{Linear: vec(d.Linear), Angular: vec(d.Angular)}
		}
	case "position":
		if err = unmarshal(&v); err == nil {
			msg = control.PositionRef(vec(v))
		}
	case "velocity":
		if err = unmarshal(&v); err == nil {
			msg = control.VelocityRef(vec(v))
		}
	case "acceleration":
		if err = unmarshal(&v); err == nil {
			msg = control.AccelerationRef(vec(v))
		}
	case "heading":
		if err = unmarshal(&v); err == nil {
			msg = control.HeadingRef(vec(v))
		}
	case "omega":
		if err = unmarshal(&v); err == nil {
			msg = control.OmegaRef(vec(v))
		}
	case "alpha":
		if err = unmarshal(&v); err == nil {
			msg = control.AlphaRef(vec(v))
		}
	case "rotation":
		var d [9]float64
		if err = unmarshal(&d); err == nil {
			msg = control.RotationRef(d)
		}
	case "euler":
		var d eulerData
		if err = unmarshal(&d); err == nil {
			msg = control.EulerRef(geometry.Euler{Roll: d.Roll, Pitch: d.Pitch, Yaw: d.Yaw})
		}
	case "mode":
		var d int
		if err = unmarshal(&d); err == nil {
			msg = control.ModeSelect(d)
		}
	case "gains":
		var d control.Gains
		if err = unmarshal(&d); err == nil {
			msg = control.GainUpdate(d)
		}
	case "mass_feedback":
		var d [4]float64
		if err = unmarshal(&d); err == nil {
			msg = control.MassFeedback(d)
		}
	case "gripper_feedback":
		var d [2][3]float64
		if err = unmarshal(&d); err == nil {
			msg = control.GripperFeedback{vec(d[0]), vec(d[1])}
		}
	default:
		return nil, errors.Wrap(ErrUnknownType, e.Type)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Input is a websocket endpoint accepting a stream of envelopes.
type Input struct {
	p   control.Poster
	log *zap.Logger
}

func NewInput(p control.Poster, log *zap.Logger) *Input {
	return &Input{p: p, log: log}
}

func (in *Input) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	socket, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		in.log.Warn("CtlWeb: Upgrade failed", zap.Error(err))
		return
	}
	defer socket.Close()
	in.log.Info("CtlWeb: Input connected", zap.String("remote", req.RemoteAddr))

	for {
		var e Envelope
		if err := socket.ReadJSON(&e); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				in.log.Info("CtlWeb: Input disconnected", zap.Error(err))
			}
			return
		}
		msg, err := Decode(e)
		if err == nil {
			err = in.p.Post(req.Context(), msg)
		}
		if err != nil {
			in.log.Warn("CtlWeb: Input rejected", zap.String("type", e.Type), zap.Error(err))
			if werr := socket.WriteJSON(Reply{Error: err.Error()}); werr != nil {
				return
			}
		}
	}
}
