package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	Seed              int64   `json:"seed"`
	CellSize          float64 `json:"cell_size"`
	GridI             int     `json:"grid_i"`
	GridJ             int     `json:"grid_j"`
	InteractionRadius int     `json:"interaction_radius"`
	WinThreshold      int64   `json:"win_threshold"`
	ViewRadius        int     `json:"view_radius"`
}

// ACT (client -> server): a batch of instants applied in order.
type ActMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Instants        []InstantReq `json:"instants"`
}

type InstantReq struct {
	ID   string `json:"id,omitempty"`
	Kind string `json:"type"`

	// MOVE: one discrete step on a single axis.
	DI int `json:"di,omitempty"`
	DJ int `json:"dj,omitempty"`

	// INTERACT: target cell.
	Cell [2]int `json:"cell,omitempty"`

	// SET_MODE.
	Mode string `json:"mode,omitempty"`

	// POS: a raw continuous reading, or an error notification from the
	// reading source (in which case Lat/Lng are meaningless).
	Lat   float64 `json:"lat,omitempty"`
	Lng   float64 `json:"lng,omitempty"`
	Error string  `json:"error,omitempty"`
}

// STATE (server -> client): pushed after every processed event.
type StateMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Seq             uint64      `json:"seq"`
	Player          PlayerState `json:"player"`
	Mode            string      `json:"mode"`
	View            ViewWindow  `json:"view"`
	Events          []GameEvent `json:"events,omitempty"`
}

type PlayerState struct {
	Cell    [2]int     `json:"cell"`
	Pos     [2]float64 `json:"pos"`
	Holding int64      `json:"holding"` // 0 = empty-handed
}

// ViewWindow is the visible-range query result: cell values for the
// rectangle Origin .. Origin+(W-1,H-1), row-major with J fastest,
// run-length encoded (most of the field is empty).
type ViewWindow struct {
	Origin   [2]int `json:"origin"`
	W        int    `json:"w"`
	H        int    `json:"h"`
	Encoding string `json:"encoding"` // "RLE"
	Data     string `json:"data"`
}

type GameEvent struct {
	Kind    string `json:"type"`
	Cell    [2]int `json:"cell,omitempty"`
	Value   int64  `json:"value,omitempty"`
	Holding int64  `json:"holding,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

// Game event kinds.
const (
	EvPickup = "PICKUP"
	EvPlace  = "PLACE"
	EvMerge  = "MERGE"
	EvWin    = "WIN"
	EvMode   = "MODE"
	EvReset  = "RESET"
)

// ACK (server -> client): outcome of a rejected or malformed instant.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}
