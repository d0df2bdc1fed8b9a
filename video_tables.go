package mpeg

// Picture coding types.
const (
	pictureTypeIntra      = 1
	pictureTypePredictive = 2
	pictureTypeB          = 3
)

// Video start codes.
const (
	startPicture    = 0x00
	startSliceFirst = 0x01
	startSliceLast  = 0xAF
	startSequence   = 0xB3
)

// isSliceStart reports whether code is a slice start code.
func isSliceStart(code int) bool {
	return code >= startSliceFirst && code <= startSliceLast
}

// pictureRate maps the 4-bit frame rate code to frames per second.
var pictureRate = [16]float64{
	0.000, 23.976, 24.000, 25.000, 29.970, 30.000, 50.000, 59.940,
	60.000, 0.000, 0.000, 0.000, 0.000, 0.000, 0.000, 0.000,
}

// zigZag maps scan order to the raster position inside an 8x8 block.
var zigZag = [64]uint8{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// defaultIntraQuantMatrix is used when the sequence header carries no custom intra matrix.
var defaultIntraQuantMatrix = [64]uint8{
	8, 16, 19, 22, 26, 27, 29, 34,
	16, 16, 22, 24, 27, 29, 34, 37,
	19, 22, 26, 27, 29, 34, 34, 38,
	22, 22, 26, 27, 29, 34, 37, 40,
	22, 26, 27, 29, 32, 35, 40, 48,
	26, 27, 29, 32, 35, 40, 48, 58,
	26, 27, 29, 34, 38, 46, 56, 69,
	27, 29, 35, 38, 46, 56, 69, 83,
}

// defaultNonIntraQuantMatrix is flat.
var defaultNonIntraQuantMatrix = [64]uint8{
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16,
}

// premultiplier folds the IDCT input scaling into dequantization.
var premultiplier = [64]uint8{
	32, 44, 42, 38, 32, 25, 17, 9,
	44, 62, 58, 52, 44, 35, 24, 12,
	42, 58, 55, 49, 42, 33, 23, 12,
	38, 52, 49, 44, 38, 30, 20, 10,
	32, 44, 42, 38, 32, 25, 17, 9,
	25, 35, 33, 30, 25, 20, 14, 7,
	17, 24, 23, 20, 17, 14, 9, 5,
	9, 12, 12, 10, 9, 7, 5, 2,
}

// Variable length code tables. Each line is the child pair of one internal
// node, the trailing comment shows the bits read so far.

var macroblockAddressIncrement = []vlcNode{
	branch(1), leaf(1),     //   0: x
	branch(2), branch(3),   //   1: 0x
	branch(4), branch(5),   //   2: 00x
	leaf(3), leaf(2),       //   3: 01x
	branch(6), branch(7),   //   4: 000x
	leaf(5), leaf(4),       //   5: 001x
	branch(8), branch(9),   //   6: 0000x
	leaf(7), leaf(6),       //   7: 0001x
	branch(10), branch(11), //   8: 0000 0x
	branch(12), branch(13), //   9: 0000 1x
	branch(14), branch(15), //  10: 0000 00x
	branch(16), branch(17), //  11: 0000 01x
	branch(18), branch(19), //  12: 0000 10x
	leaf(9), leaf(8),       //  13: 0000 11x
	invalid, branch(20),    //  14: 0000 000x
	invalid, branch(21),    //  15: 0000 001x
	branch(22), branch(23), //  16: 0000 010x
	leaf(15), leaf(14),     //  17: 0000 011x
	leaf(13), leaf(12),     //  18: 0000 100x
	leaf(11), leaf(10),     //  19: 0000 101x
	branch(24), branch(25), //  20: 0000 0001x
	branch(26), branch(27), //  21: 0000 0011x
	branch(28), branch(29), //  22: 0000 0100x
	branch(30), branch(31), //  23: 0000 0101x
	branch(32), invalid,    //  24: 0000 0001 0x
	invalid, branch(33),    //  25: 0000 0001 1x
	branch(34), branch(35), //  26: 0000 0011 0x
	branch(36), branch(37), //  27: 0000 0011 1x
	branch(38), branch(39), //  28: 0000 0100 0x
	leaf(21), leaf(20),     //  29: 0000 0100 1x
	leaf(19), leaf(18),     //  30: 0000 0101 0x
	leaf(17), leaf(16),     //  31: 0000 0101 1x
	leaf(35), invalid,      //  32: 0000 0001 00x
	invalid, leaf(34),      //  33: 0000 0001 11x
	leaf(33), leaf(32),     //  34: 0000 0011 00x
	leaf(31), leaf(30),     //  35: 0000 0011 01x
	leaf(29), leaf(28),     //  36: 0000 0011 10x
	leaf(27), leaf(26),     //  37: 0000 0011 11x
	leaf(25), leaf(24),     //  38: 0000 0100 00x
	leaf(23), leaf(22),     //  39: 0000 0100 01x
}

// Macroblock type bits: 0x01 intra, 0x02 coded block pattern, 0x04 backward
// motion, 0x08 forward motion, 0x10 quantizer scale.
var macroblockTypeIntra = []vlcNode{
	branch(1), leaf(0x01), //   0: x
	invalid, leaf(0x11),   //   1: 0x
}

var macroblockTypePredictive = []vlcNode{
	branch(1), leaf(0x0a),  //   0: x
	branch(2), leaf(0x02),  //   1: 0x
	branch(3), leaf(0x08),  //   2: 00x
	branch(4), branch(5),   //   3: 000x
	branch(6), leaf(0x12),  //   4: 0000x
	leaf(0x1a), leaf(0x01), //   5: 0001x
	invalid, leaf(0x11),    //   6: 0000 0x
}

var macroblockTypeB = []vlcNode{
	branch(1), branch(2),   //   0: x
	branch(3), branch(4),   //   1: 0x
	leaf(0x0c), leaf(0x0e), //   2: 1x
	branch(5), branch(6),   //   3: 00x
	leaf(0x04), leaf(0x06), //   4: 01x
	branch(7), branch(8),   //   5: 000x
	leaf(0x08), leaf(0x0a), //   6: 001x
	branch(9), branch(10),  //   7: 0000x
	leaf(0x1e), leaf(0x01), //   8: 0001x
	invalid, leaf(0x11),    //   9: 0000 0x
	leaf(0x16), leaf(0x1a), //  10: 0000 1x
}

var codedBlockPattern = []vlcNode{
	branch(1), branch(2),   //   0: x
	branch(3), branch(4),   //   1: 0x
	branch(5), branch(6),   //   2: 1x
	branch(7), branch(8),   //   3: 00x
	branch(9), branch(10),  //   4: 01x
	branch(11), branch(12), //   5: 10x
	branch(13), leaf(60),   //   6: 11x
	branch(14), branch(15), //   7: 000x
	branch(16), branch(17), //   8: 001x
	branch(18), branch(19), //   9: 010x
	branch(20), branch(21), //  10: 011x
	branch(22), branch(23), //  11: 100x
	leaf(32), leaf(16),     //  12: 101x
	leaf(8), leaf(4),       //  13: 110x
	branch(24), branch(25), //  14: 0000x
	branch(26), branch(27), //  15: 0001x
	branch(28), branch(29), //  16: 0010x
	branch(30), branch(31), //  17: 0011x
	leaf(62), leaf(2),      //  18: 0100x
	leaf(61), leaf(1),      //  19: 0101x
	leaf(56), leaf(52),     //  20: 0110x
	leaf(44), leaf(28),     //  21: 0111x
	leaf(40), leaf(20),     //  22: 1000x
	leaf(48), leaf(12),     //  23: 1001x
	branch(32), branch(33), //  24: 0000 0x
	branch(34), branch(35), //  25: 0000 1x
	branch(36), branch(37), //  26: 0001 0x
	branch(38), branch(39), //  27: 0001 1x
	branch(40), branch(41), //  28: 0010 0x
	branch(42), branch(43), //  29: 0010 1x
	leaf(63), leaf(3),      //  30: 0011 0x
	leaf(36), leaf(24),     //  31: 0011 1x
	branch(44), branch(45), //  32: 0000 00x
	branch(46), branch(47), //  33: 0000 01x
	branch(48), branch(49), //  34: 0000 10x
	branch(50), branch(51), //  35: 0000 11x
	branch(52), branch(53), //  36: 0001 00x
	branch(54), branch(55), //  37: 0001 01x
	branch(56), branch(57), //  38: 0001 10x
	branch(58), branch(59), //  39: 0001 11x
	leaf(34), leaf(18),     //  40: 0010 00x
	leaf(10), leaf(6),      //  41: 0010 01x
	leaf(33), leaf(17),     //  42: 0010 10x
	leaf(9), leaf(5),       //  43: 0010 11x
	invalid, branch(60),    //  44: 0000 000x
	branch(61), branch(62), //  45: 0000 001x
	leaf(58), leaf(54),     //  46: 0000 010x
	leaf(46), leaf(30),     //  47: 0000 011x
	leaf(57), leaf(53),     //  48: 0000 100x
	leaf(45), leaf(29),     //  49: 0000 101x
	leaf(38), leaf(26),     //  50: 0000 110x
	leaf(37), leaf(25),     //  51: 0000 111x
	leaf(43), leaf(23),     //  52: 0001 000x
	leaf(51), leaf(15),     //  53: 0001 001x
	leaf(42), leaf(22),     //  54: 0001 010x
	leaf(50), leaf(14),     //  55: 0001 011x
	leaf(41), leaf(21),     //  56: 0001 100x
	leaf(49), leaf(13),     //  57: 0001 101x
	leaf(35), leaf(19),     //  58: 0001 110x
	leaf(11), leaf(7),      //  59: 0001 111x
	leaf(39), leaf(27),     //  60: 0000 0001x
	leaf(59), leaf(55),     //  61: 0000 0010x
	leaf(47), leaf(31),     //  62: 0000 0011x
}

var motionCode = []vlcNode{
	branch(1), leaf(0),     //   0: x
	branch(2), branch(3),   //   1: 0x
	branch(4), branch(5),   //   2: 00x
	leaf(1), leaf(-1),      //   3: 01x
	branch(6), branch(7),   //   4: 000x
	leaf(2), leaf(-2),      //   5: 001x
	branch(8), branch(9),   //   6: 0000x
	leaf(3), leaf(-3),      //   7: 0001x
	branch(10), branch(11), //   8: 0000 0x
	branch(12), branch(13), //   9: 0000 1x
	invalid, branch(14),    //  10: 0000 00x
	branch(15), branch(16), //  11: 0000 01x
	branch(17), branch(18), //  12: 0000 10x
	leaf(4), leaf(-4),      //  13: 0000 11x
	invalid, branch(19),    //  14: 0000 001x
	branch(20), branch(21), //  15: 0000 010x
	leaf(7), leaf(-7),      //  16: 0000 011x
	leaf(6), leaf(-6),      //  17: 0000 100x
	leaf(5), leaf(-5),      //  18: 0000 101x
	branch(22), branch(23), //  19: 0000 0011x
	branch(24), branch(25), //  20: 0000 0100x
	branch(26), branch(27), //  21: 0000 0101x
	branch(28), branch(29), //  22: 0000 0011 0x
	branch(30), branch(31), //  23: 0000 0011 1x
	branch(32), branch(33), //  24: 0000 0100 0x
	leaf(10), leaf(-10),    //  25: 0000 0100 1x
	leaf(9), leaf(-9),      //  26: 0000 0101 0x
	leaf(8), leaf(-8),      //  27: 0000 0101 1x
	leaf(16), leaf(-16),    //  28: 0000 0011 00x
	leaf(15), leaf(-15),    //  29: 0000 0011 01x
	leaf(14), leaf(-14),    //  30: 0000 0011 10x
	leaf(13), leaf(-13),    //  31: 0000 0011 11x
	leaf(12), leaf(-12),    //  32: 0000 0100 00x
	leaf(11), leaf(-11),    //  33: 0000 0100 01x
}

var dctSizeLuminance = []vlcNode{
	branch(1), branch(2), //   0: x
	leaf(1), leaf(2),     //   1: 0x
	branch(3), branch(4), //   2: 1x
	leaf(0), leaf(3),     //   3: 10x
	leaf(4), branch(5),   //   4: 11x
	leaf(5), branch(6),   //   5: 111x
	leaf(6), branch(7),   //   6: 1111x
	leaf(7), branch(8),   //   7: 1111 1x
	leaf(8), invalid,     //   8: 1111 11x
}

var dctSizeChrominance = []vlcNode{
	branch(1), branch(2), //   0: x
	leaf(0), leaf(1),     //   1: 0x
	leaf(2), branch(3),   //   2: 1x
	leaf(3), branch(4),   //   3: 11x
	leaf(4), branch(5),   //   4: 111x
	leaf(5), branch(6),   //   5: 1111x
	leaf(6), branch(7),   //   6: 1111 1x
	leaf(7), branch(8),   //   7: 1111 11x
	leaf(8), invalid,     //   8: 1111 111x
}

// dctCoeff leaves pack the run in the high byte and the level in the low
// byte. The level is unsigned, its sign bit follows in the stream.
// 0x0001 doubles as end of block, 0xffff is the escape code.
var dctCoeff = []vlcNode{
	branch(1), leaf(0x0001),    //   0: x
	branch(2), branch(3),       //   1: 0x
	branch(4), branch(5),       //   2: 00x
	branch(6), leaf(0x0101),    //   3: 01x
	branch(7), branch(8),       //   4: 000x
	branch(9), branch(10),      //   5: 001x
	leaf(0x0002), leaf(0x0201), //   6: 010x
	branch(11), branch(12),     //   7: 0000x
	branch(13), branch(14),     //   8: 0001x
	branch(15), leaf(0x0003),   //   9: 0010x
	leaf(0x0401), leaf(0x0301), //  10: 0011x
	branch(16), leaf(0xffff),   //  11: 0000 0x
	branch(17), branch(18),     //  12: 0000 1x
	leaf(0x0701), leaf(0x0601), //  13: 0001 0x
	leaf(0x0102), leaf(0x0501), //  14: 0001 1x
	branch(19), branch(20),     //  15: 0010 0x
	branch(21), branch(22),     //  16: 0000 00x
	leaf(0x0202), leaf(0x0901), //  17: 0000 10x
	leaf(0x0004), leaf(0x0801), //  18: 0000 11x
	branch(23), branch(24),     //  19: 0010 00x
	branch(25), branch(26),     //  20: 0010 01x
	branch(27), branch(28),     //  21: 0000 000x
	branch(29), branch(30),     //  22: 0000 001x
	leaf(0x0d01), leaf(0x0006), //  23: 0010 000x
	leaf(0x0c01), leaf(0x0b01), //  24: 0010 001x
	leaf(0x0302), leaf(0x0103), //  25: 0010 010x
	leaf(0x0005), leaf(0x0a01), //  26: 0010 011x
	branch(31), branch(32),     //  27: 0000 0000x
	branch(33), branch(34),     //  28: 0000 0001x
	branch(35), branch(36),     //  29: 0000 0010x
	branch(37), branch(38),     //  30: 0000 0011x
	branch(39), branch(40),     //  31: 0000 0000 0x
	branch(41), branch(42),     //  32: 0000 0000 1x
	branch(43), branch(44),     //  33: 0000 0001 0x
	branch(45), branch(46),     //  34: 0000 0001 1x
	leaf(0x1001), leaf(0x0502), //  35: 0000 0010 0x
	leaf(0x0007), leaf(0x0203), //  36: 0000 0010 1x
	leaf(0x0104), leaf(0x0f01), //  37: 0000 0011 0x
	leaf(0x0e01), leaf(0x0402), //  38: 0000 0011 1x
	branch(47), branch(48),     //  39: 0000 0000 00x
	branch(49), branch(50),     //  40: 0000 0000 01x
	branch(51), branch(52),     //  41: 0000 0000 10x
	branch(53), branch(54),     //  42: 0000 0000 11x
	branch(55), branch(56),     //  43: 0000 0001 00x
	branch(57), branch(58),     //  44: 0000 0001 01x
	branch(59), branch(60),     //  45: 0000 0001 10x
	branch(61), branch(62),     //  46: 0000 0001 11x
	invalid, branch(63),        //  47: 0000 0000 000x
	branch(64), branch(65),     //  48: 0000 0000 001x
	branch(66), branch(67),     //  49: 0000 0000 010x
	branch(68), branch(69),     //  50: 0000 0000 011x
	branch(70), branch(71),     //  51: 0000 0000 100x
	branch(72), branch(73),     //  52: 0000 0000 101x
	branch(74), branch(75),     //  53: 0000 0000 110x
	branch(76), branch(77),     //  54: 0000 0000 111x
	leaf(0x000b), leaf(0x0802), //  55: 0000 0001 000x
	leaf(0x0403), leaf(0x000a), //  56: 0000 0001 001x
	leaf(0x0204), leaf(0x0702), //  57: 0000 0001 010x
	leaf(0x1501), leaf(0x1401), //  58: 0000 0001 011x
	leaf(0x0009), leaf(0x1301), //  59: 0000 0001 100x
	leaf(0x1201), leaf(0x0105), //  60: 0000 0001 101x
	leaf(0x0303), leaf(0x0008), //  61: 0000 0001 110x
	leaf(0x0602), leaf(0x1101), //  62: 0000 0001 111x
	branch(78), branch(79),     //  63: 0000 0000 0001x
	branch(80), branch(81),     //  64: 0000 0000 0010x
	branch(82), branch(83),     //  65: 0000 0000 0011x
	branch(84), branch(85),     //  66: 0000 0000 0100x
	branch(86), branch(87),     //  67: 0000 0000 0101x
	branch(88), branch(89),     //  68: 0000 0000 0110x
	branch(90), branch(91),     //  69: 0000 0000 0111x
	leaf(0x0a02), leaf(0x0902), //  70: 0000 0000 1000x
	leaf(0x0503), leaf(0x0304), //  71: 0000 0000 1001x
	leaf(0x0205), leaf(0x0107), //  72: 0000 0000 1010x
	leaf(0x0106), leaf(0x000f), //  73: 0000 0000 1011x
	leaf(0x000e), leaf(0x000d), //  74: 0000 0000 1100x
	leaf(0x000c), leaf(0x1a01), //  75: 0000 0000 1101x
	leaf(0x1901), leaf(0x1801), //  76: 0000 0000 1110x
	leaf(0x1701), leaf(0x1601), //  77: 0000 0000 1111x
	branch(92), branch(93),     //  78: 0000 0000 0001 0x
	branch(94), branch(95),     //  79: 0000 0000 0001 1x
	branch(96), branch(97),     //  80: 0000 0000 0010 0x
	branch(98), branch(99),     //  81: 0000 0000 0010 1x
	branch(100), branch(101),   //  82: 0000 0000 0011 0x
	branch(102), branch(103),   //  83: 0000 0000 0011 1x
	leaf(0x001f), leaf(0x001e), //  84: 0000 0000 0100 0x
	leaf(0x001d), leaf(0x001c), //  85: 0000 0000 0100 1x
	leaf(0x001b), leaf(0x001a), //  86: 0000 0000 0101 0x
	leaf(0x0019), leaf(0x0018), //  87: 0000 0000 0101 1x
	leaf(0x0017), leaf(0x0016), //  88: 0000 0000 0110 0x
	leaf(0x0015), leaf(0x0014), //  89: 0000 0000 0110 1x
	leaf(0x0013), leaf(0x0012), //  90: 0000 0000 0111 0x
	leaf(0x0011), leaf(0x0010), //  91: 0000 0000 0111 1x
	branch(104), branch(105),   //  92: 0000 0000 0001 00x
	branch(106), branch(107),   //  93: 0000 0000 0001 01x
	branch(108), branch(109),   //  94: 0000 0000 0001 10x
	branch(110), branch(111),   //  95: 0000 0000 0001 11x
	leaf(0x0028), leaf(0x0027), //  96: 0000 0000 0010 00x
	leaf(0x0026), leaf(0x0025), //  97: 0000 0000 0010 01x
	leaf(0x0024), leaf(0x0023), //  98: 0000 0000 0010 10x
	leaf(0x0022), leaf(0x0021), //  99: 0000 0000 0010 11x
	leaf(0x0020), leaf(0x010e), // 100: 0000 0000 0011 00x
	leaf(0x010d), leaf(0x010c), // 101: 0000 0000 0011 01x
	leaf(0x010b), leaf(0x010a), // 102: 0000 0000 0011 10x
	leaf(0x0109), leaf(0x0108), // 103: 0000 0000 0011 11x
	leaf(0x0112), leaf(0x0111), // 104: 0000 0000 0001 000x
	leaf(0x0110), leaf(0x010f), // 105: 0000 0000 0001 001x
	leaf(0x0603), leaf(0x1002), // 106: 0000 0000 0001 010x
	leaf(0x0f02), leaf(0x0e02), // 107: 0000 0000 0001 011x
	leaf(0x0d02), leaf(0x0c02), // 108: 0000 0000 0001 100x
	leaf(0x0b02), leaf(0x1f01), // 109: 0000 0000 0001 101x
	leaf(0x1e01), leaf(0x1d01), // 110: 0000 0000 0001 110x
	leaf(0x1c01), leaf(0x1b01), // 111: 0000 0000 0001 111x
}

// macroblockType is indexed by picture coding type.
var macroblockType = [4][]vlcNode{
	nil,
	macroblockTypeIntra,
	macroblockTypePredictive,
	macroblockTypeB,
}

// dctSize is indexed by plane (Y, Cb, Cr).
var dctSize = [3][]vlcNode{
	dctSizeLuminance,
	dctSizeChrominance,
	dctSizeChrominance,
}
