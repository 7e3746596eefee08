package writemode

const (
	WriteSingleCoil        byte = 5
	WriteSingleRegister    byte = 6
	WriteMultipleCoils     byte = 15
	WriteMultipleRegisters byte = 16
)

// FunctionCode picks the write function. Without a configured code bool values go to a single coil and
// everything else to a single register; register writes wider than one register become multi-register writes.
func FunctionCode(configured byte, isBool bool, payloadLen int) byte {
	fc := configured
	if fc == 0 {
		if isBool {
			fc = WriteSingleCoil
		} else {
			fc = WriteSingleRegister
		}
	}
	if (fc == WriteSingleRegister || fc == WriteMultipleRegisters) && payloadLen > 2 {
		return WriteMultipleRegisters
	}
	return fc
}

func IsCoilWrite(fc byte) bool {
	return fc == WriteSingleCoil || fc == WriteMultipleCoils
}
