package schema

const (
	CommandRead       = "read"
	CommandWrite      = "write"
	CommandReadOnReq  = "readOnReq"
	CommandStats      = "stats"
	CommandListSerial = "listSerial"
	CommandSchema     = "schema"

	ResultReadRequestOk   = "Read Request Ok"
	ResultReadRequestFail = "Read Request Fail"
	ResultUnknownCommand  = "Unknown command"
)

const (
	StatusOK  = 0
	StatusBad = 1
)

// Command is an inbound request from the host. Data items are channel records.
type Command struct {
	Command string          `json:"command"`
	UUID    string          `json:"uuid,omitempty"`
	Unit    string          `json:"unit,omitempty"`
	Param   string          `json:"param,omitempty"`
	Sender  string          `json:"sender,omitempty"`
	Type    string          `json:"type,omitempty"`
	Data    []ChannelRecord `json:"data,omitempty"`
}

// Reply mirrors the originating command. OK carries the host's response flag.
type Reply struct {
	Command
	Payload interface{} `json:"payload,omitempty"`
	Result  string      `json:"result,omitempty"`
	OK      bool        `json:"-"`
}

func NewReply(cmd Command, payload interface{}, ok bool) Reply {
	return Reply{Command: cmd, Payload: payload, OK: ok}
}

// Update is one channel value or status change sent to the host.
type Update struct {
	ID     string   `json:"id"`
	Value  *float64 `json:"value,omitempty"`
	Status int      `json:"chstatus"`
	Title  string   `json:"title,omitempty"`
}

func ValueUpdate(id string, v float64) Update {
	return Update{ID: id, Value: &v, Status: StatusOK}
}

// OKUpdate reports a recovered channel without a value.
func OKUpdate(id string) Update {
	return Update{ID: id, Status: StatusOK}
}

func BadUpdate(id, title string) Update {
	return Update{ID: id, Status: StatusBad, Title: title}
}

// ReadResult is one item of a read command reply.
type ReadResult struct {
	ChannelRecord
	Value *float64 `json:"value"`
	Error string   `json:"error,omitempty"`
}

type WriteResult struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
	Error string  `json:"error,omitempty"`
}
