package schema

// ChannelSchema describes the editable channel properties for host forms.
type ChannelSchema struct {
	Transport     Enum   `json:"nodetransport"`
	Port          Number `json:"nodeport"`
	UnitID        Number `json:"unitid"`
	Address       Number `json:"address"`
	ReadFunction  Enum   `json:"fcr"`
	WriteFunction Enum   `json:"fcw"`
	VarType       Enum   `json:"vartype"`
	WVarType      Enum   `json:"wvartype"`
	ManBO8        Enum   `json:"manbo8"`
	ManBO16       Enum   `json:"manbo16"`
	ManBO32       Enum   `json:"manbo32"`
	ManBO64       Enum   `json:"manbo64"`
	PollTimeFctr  Number `json:"polltimefctr"`
}

func GetChannelSchema() *ChannelSchema {
	return &ChannelSchema{
		Transport:     TransportEnum(),
		Port:          Number{Type: "number", Title: "Port", Default: 502, Minimum: 1, Maximum: 65535},
		UnitID:        Number{Type: "number", Title: "Unit ID", Default: 1, Minimum: 0, Maximum: 255},
		Address:       Number{Type: "number", Title: "Register", Default: 0, Minimum: 0, Maximum: 65535, Description: "Zero based"},
		ReadFunction:  ReadFunctionEnum(),
		WriteFunction: WriteFunctionEnum(),
		VarType:       VarTypeEnum(),
		WVarType:      VarTypeEnum(),
		ManBO8:        ByteOrderEnum("Byte Order 8 bit"),
		ManBO16:       ByteOrderEnum("Byte Order 16 bit"),
		ManBO32:       ByteOrderEnum("Byte Order 32 bit"),
		ManBO64:       ByteOrderEnum("Byte Order 64 bit"),
		PollTimeFctr:  Number{Type: "number", Title: "Poll Every N Passes", Default: 1, Minimum: 1, Maximum: 1000},
	}
}
