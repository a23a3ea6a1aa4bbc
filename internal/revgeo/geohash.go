package revgeo

// 文档注释：geohash 编码（base32），仅用作缓存键；精度 6 约 1.2km
var base32 = []byte("0123456789bcdefghjkmnpqrstuvwxyz")

func encodeGeohash(lat, lon float64, precision int) string {
	latLo, latHi := -90.0, 90.0
	lonLo, lonHi := -180.0, 180.0
	out := make([]byte, 0, precision)
	even := true
	bit, ch := 0, 0
	for len(out) < precision {
		if even {
			mid := (lonLo + lonHi) / 2
			if lon >= mid {
				ch |= 16 >> bit
				lonLo = mid
			} else {
				lonHi = mid
			}
		} else {
			mid := (latLo + latHi) / 2
			if lat >= mid {
				ch |= 16 >> bit
				latLo = mid
			} else {
				latHi = mid
			}
		}
		even = !even
		if bit < 4 {
			bit++
			continue
		}
		out = append(out, base32[ch])
		bit, ch = 0, 0
	}
	return string(out)
}
