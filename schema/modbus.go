package schema

import "github.com/NubeIO/module-core-modbus-master/smod"

// Enum is a JSON-schema string property with a fixed option list.
type Enum struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Options  []string `json:"enum"`
	EnumName []string `json:"enumNames"`
	Default  string   `json:"default"`
	ReadOnly bool     `json:"readOnly"`
}

type Number struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Default     int    `json:"default"`
	Minimum     int    `json:"minimum"`
	Maximum     int    `json:"maximum"`
	Description string `json:"description,omitempty"`
}

func newEnum(title, def string, options, names []string) Enum {
	return Enum{Type: "string", Title: title, Options: options, EnumName: names, Default: def}
}

func VarTypeEnum() Enum {
	opts := []string{
		string(smod.Bool), string(smod.Int8), string(smod.Uint8), string(smod.Int16), string(smod.Uint16),
		string(smod.Int32), string(smod.Uint32), string(smod.Float), string(smod.Int64), string(smod.Uint64),
		string(smod.Double),
	}
	return newEnum("Data Type", string(smod.Uint16), opts, opts)
}

func ByteOrderEnum(title string) Enum {
	return newEnum(title, string(smod.BigEndian),
		[]string{string(smod.BigEndian), string(smod.LittleEndian), string(smod.WordSwap), string(smod.ByteSwap)},
		[]string{"Standard/Network Order (ABCD)", "Byte Swap + Word Swap (DCBA)", "Word Swap (CDAB)", "Byte Swap (BADC)"})
}

func ReadFunctionEnum() Enum {
	return newEnum("Read Function", "3",
		[]string{"1", "2", "3", "4"},
		[]string{"Coil", "Discrete Input", "Holding Register", "Input Register"})
}

func WriteFunctionEnum() Enum {
	return newEnum("Write Function", "0",
		[]string{"0", "5", "6", "15", "16"},
		[]string{"Auto", "Single Coil", "Single Register", "Multiple Coils", "Multiple Registers"})
}

func TransportEnum() Enum {
	return newEnum("Transport", string(smod.TCP),
		[]string{string(smod.TCP), string(smod.RTUOverTCPBuffered), string(smod.RTUOverTCPTelnet)},
		[]string{"Modbus TCP", "RTU over TCP (buffered)", "RTU over TCP (telnet)"})
}
