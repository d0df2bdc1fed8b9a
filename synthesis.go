package mpeg

// matrixTransform computes 64 values of the synthesis filter bank input V from
// the 32 subband samples s[sb][ss] using a fast 32-point DCT, writing them to d[dp:dp+64].
func matrixTransform(s *[32][3]int, ss int, d *[1024]float32, dp int) {
	var t01, t02, t03, t04, t05, t06, t07, t08, t09, t10, t11, t12,
		t13, t14, t15, t16, t17, t18, t19, t20, t21, t22, t23, t24,
		t25, t26, t27, t28, t29, t30, t31, t32, t33 float32

	t01 = float32(s[0][ss] + s[31][ss])
	t02 = float32(s[0][ss] - s[31][ss]) * 0.500602998235
	t03 = float32(s[1][ss] + s[30][ss])
	t04 = float32(s[1][ss] - s[30][ss]) * 0.505470959898
	t05 = float32(s[2][ss] + s[29][ss])
	t06 = float32(s[2][ss] - s[29][ss]) * 0.515447309923
	t07 = float32(s[3][ss] + s[28][ss])
	t08 = float32(s[3][ss] - s[28][ss]) * 0.53104259109
	t09 = float32(s[4][ss] + s[27][ss])
	t10 = float32(s[4][ss] - s[27][ss]) * 0.553103896034
	t11 = float32(s[5][ss] + s[26][ss])
	t12 = float32(s[5][ss] - s[26][ss]) * 0.582934968206
	t13 = float32(s[6][ss] + s[25][ss])
	t14 = float32(s[6][ss] - s[25][ss]) * 0.622504123036
	t15 = float32(s[7][ss] + s[24][ss])
	t16 = float32(s[7][ss] - s[24][ss]) * 0.674808341455
	t17 = float32(s[8][ss] + s[23][ss])
	t18 = float32(s[8][ss] - s[23][ss]) * 0.744536271002
	t19 = float32(s[9][ss] + s[22][ss])
	t20 = float32(s[9][ss] - s[22][ss]) * 0.839349645416
	t21 = float32(s[10][ss] + s[21][ss])
	t22 = float32(s[10][ss] - s[21][ss]) * 0.972568237862
	t23 = float32(s[11][ss] + s[20][ss])
	t24 = float32(s[11][ss] - s[20][ss]) * 1.16943993343
	t25 = float32(s[12][ss] + s[19][ss])
	t26 = float32(s[12][ss] - s[19][ss]) * 1.48416461631
	t27 = float32(s[13][ss] + s[18][ss])
	t28 = float32(s[13][ss] - s[18][ss]) * 2.05778100995
	t29 = float32(s[14][ss] + s[17][ss])
	t30 = float32(s[14][ss] - s[17][ss]) * 3.40760841847
	t31 = float32(s[15][ss] + s[16][ss])
	t32 = float32(s[15][ss] - s[16][ss]) * 10.1900081235
	t33 = t01 + t31
	t31 = (t01 - t31) * 0.502419286188
	t01 = t03 + t29
	t29 = (t03 - t29) * 0.52249861494
	t03 = t05 + t27
	t27 = (t05 - t27) * 0.566944034816
	t05 = t07 + t25
	t25 = (t07 - t25) * 0.64682178336
	t07 = t09 + t23
	t23 = (t09 - t23) * 0.788154623451
	t09 = t11 + t21
	t21 = (t11 - t21) * 1.06067768599
	t11 = t13 + t19
	t19 = (t13 - t19) * 1.72244709824
	t13 = t15 + t17
	t17 = (t15 - t17) * 5.10114861869
	t15 = t33 + t13
	t13 = (t33 - t13) * 0.509795579104
	t33 = t01 + t11
	t01 = (t01 - t11) * 0.601344886935
	t11 = t03 + t09
	t09 = (t03 - t09) * 0.899976223136
	t03 = t05 + t07
	t07 = (t05 - t07) * 2.56291544774
	t05 = t15 + t03
	t15 = (t15 - t03) * 0.541196100146
	t03 = t33 + t11
	t11 = (t33 - t11) * 1.30656296488
	t33 = t05 + t03
	t05 = (t05 - t03) * 0.707106781187
	t03 = t15 + t11
	t15 = (t15 - t11) * 0.707106781187
	t03 += t15
	t11 = t13 + t07
	t13 = (t13 - t07) * 0.541196100146
	t07 = t01 + t09
	t09 = (t01 - t09) * 1.30656296488
	t01 = t11 + t07
	t07 = (t11 - t07) * 0.707106781187
	t11 = t13 + t09
	t13 = (t13 - t09) * 0.707106781187
	t11 += t13
	t01 += t11
	t11 += t07
	t07 += t13
	t09 = t31 + t17
	t31 = (t31 - t17) * 0.509795579104
	t17 = t29 + t19
	t29 = (t29 - t19) * 0.601344886935
	t19 = t27 + t21
	t21 = (t27 - t21) * 0.899976223136
	t27 = t25 + t23
	t23 = (t25 - t23) * 2.56291544774
	t25 = t09 + t27
	t09 = (t09 - t27) * 0.541196100146
	t27 = t17 + t19
	t19 = (t17 - t19) * 1.30656296488
	t17 = t25 + t27
	t27 = (t25 - t27) * 0.707106781187
	t25 = t09 + t19
	t19 = (t09 - t19) * 0.707106781187
	t25 += t19
	t09 = t31 + t23
	t31 = (t31 - t23) * 0.541196100146
	t23 = t29 + t21
	t21 = (t29 - t21) * 1.30656296488
	t29 = t09 + t23
	t23 = (t09 - t23) * 0.707106781187
	t09 = t31 + t21
	t31 = (t31 - t21) * 0.707106781187
	t09 += t31
	t29 += t09
	t09 += t23
	t23 += t31
	t17 += t29
	t29 += t25
	t25 += t09
	t09 += t27
	t27 += t23
	t23 += t19
	t19 += t31
	t21 = t02 + t32
	t02 = (t02 - t32) * 0.502419286188
	t32 = t04 + t30
	t04 = (t04 - t30) * 0.52249861494
	t30 = t06 + t28
	t28 = (t06 - t28) * 0.566944034816
	t06 = t08 + t26
	t08 = (t08 - t26) * 0.64682178336
	t26 = t10 + t24
	t10 = (t10 - t24) * 0.788154623451
	t24 = t12 + t22
	t22 = (t12 - t22) * 1.06067768599
	t12 = t14 + t20
	t20 = (t14 - t20) * 1.72244709824
	t14 = t16 + t18
	t16 = (t16 - t18) * 5.10114861869
	t18 = t21 + t14
	t14 = (t21 - t14) * 0.509795579104
	t21 = t32 + t12
	t32 = (t32 - t12) * 0.601344886935
	t12 = t30 + t24
	t24 = (t30 - t24) * 0.899976223136
	t30 = t06 + t26
	t26 = (t06 - t26) * 2.56291544774
	t06 = t18 + t30
	t18 = (t18 - t30) * 0.541196100146
	t30 = t21 + t12
	t12 = (t21 - t12) * 1.30656296488
	t21 = t06 + t30
	t30 = (t06 - t30) * 0.707106781187
	t06 = t18 + t12
	t12 = (t18 - t12) * 0.707106781187
	t06 += t12
	t18 = t14 + t26
	t26 = (t14 - t26) * 0.541196100146
	t14 = t32 + t24
	t24 = (t32 - t24) * 1.30656296488
	t32 = t18 + t14
	t14 = (t18 - t14) * 0.707106781187
	t18 = t26 + t24
	t24 = (t26 - t24) * 0.707106781187
	t18 += t24
	t32 += t18
	t18 += t14
	t26 = t14 + t24
	t14 = t02 + t16
	t02 = (t02 - t16) * 0.509795579104
	t16 = t04 + t20
	t04 = (t04 - t20) * 0.601344886935
	t20 = t28 + t22
	t22 = (t28 - t22) * 0.899976223136
	t28 = t08 + t10
	t10 = (t08 - t10) * 2.56291544774
	t08 = t14 + t28
	t14 = (t14 - t28) * 0.541196100146
	t28 = t16 + t20
	t20 = (t16 - t20) * 1.30656296488
	t16 = t08 + t28
	t28 = (t08 - t28) * 0.707106781187
	t08 = t14 + t20
	t20 = (t14 - t20) * 0.707106781187
	t08 += t20
	t14 = t02 + t10
	t02 = (t02 - t10) * 0.541196100146
	t10 = t04 + t22
	t22 = (t04 - t22) * 1.30656296488
	t04 = t14 + t10
	t10 = (t14 - t10) * 0.707106781187
	t14 = t02 + t22
	t02 = (t02 - t22) * 0.707106781187
	t14 += t02
	t04 += t14
	t14 += t10
	t10 += t02
	t16 += t04
	t04 += t08
	t08 += t14
	t14 += t28
	t28 += t10
	t10 += t20
	t20 += t02
	t21 += t16
	t16 += t32
	t32 += t04
	t04 += t06
	t06 += t08
	t08 += t18
	t18 += t14
	t14 += t30
	t30 += t28
	t28 += t26
	t26 += t10
	t10 += t12
	t12 += t20
	t20 += t24
	t24 += t02
	d[dp+48] = -t33
	d[dp+49] = -t21
	d[dp+47] = -t21
	d[dp+50] = -t17
	d[dp+46] = -t17
	d[dp+51] = -t16
	d[dp+45] = -t16
	d[dp+52] = -t01
	d[dp+44] = -t01
	d[dp+53] = -t32
	d[dp+43] = -t32
	d[dp+54] = -t29
	d[dp+42] = -t29
	d[dp+55] = -t04
	d[dp+41] = -t04
	d[dp+56] = -t03
	d[dp+40] = -t03
	d[dp+57] = -t06
	d[dp+39] = -t06
	d[dp+58] = -t25
	d[dp+38] = -t25
	d[dp+59] = -t08
	d[dp+37] = -t08
	d[dp+60] = -t11
	d[dp+36] = -t11
	d[dp+61] = -t18
	d[dp+35] = -t18
	d[dp+62] = -t09
	d[dp+34] = -t09
	d[dp+63] = -t14
	d[dp+33] = -t14
	d[dp+32] = -t05
	d[dp] = t05
	d[dp+31] = -t30
	d[dp+1] = t30
	d[dp+30] = -t27
	d[dp+2] = t27
	d[dp+29] = -t28
	d[dp+3] = t28
	d[dp+28] = -t07
	d[dp+4] = t07
	d[dp+27] = -t26
	d[dp+5] = t26
	d[dp+26] = -t23
	d[dp+6] = t23
	d[dp+25] = -t10
	d[dp+7] = t10
	d[dp+24] = -t15
	d[dp+8] = t15
	d[dp+23] = -t12
	d[dp+9] = t12
	d[dp+22] = -t19
	d[dp+10] = t19
	d[dp+21] = -t20
	d[dp+11] = t20
	d[dp+20] = -t13
	d[dp+12] = t13
	d[dp+19] = -t24
	d[dp+13] = t24
	d[dp+18] = -t31
	d[dp+14] = t31
	d[dp+17] = -t02
	d[dp+15] = t02
	d[dp+16] = 0
}

// synthesize runs the windowing step of the synthesis filter bank for channel ch,
// leaving 32 output samples in a.u.
func (a *Audio) synthesize(ch int) {
	v := &a.v[ch]
	a.u = [32]float32{}

	dIndex := 512 - (a.vPos >> 1)
	vIndex := (a.vPos % 128) >> 1
	for vIndex < 1024 {
		for i := range 32 {
			a.u[i] += a.d[dIndex] * v[vIndex]
			dIndex++
			vIndex++
		}

		vIndex += 128 - 32
		dIndex += 64 - 32
	}

	dIndex -= 512 - 32
	vIndex = (128 - 32 + 1024) - vIndex
	for vIndex < 1024 {
		for i := range 32 {
			a.u[i] += a.d[dIndex] * v[vIndex]
			dIndex++
			vIndex++
		}

		vIndex += 128 - 32
		dIndex += 64 - 32
	}
}
