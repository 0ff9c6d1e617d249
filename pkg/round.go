package pkg

import "github.com/shopspring/decimal"

// Round rounds half away from zero on the decimal representation of x,
// so 2.675 becomes 2.68 rather than the binary-float 2.67.
func Round(x float64, places int32) float64 {
	v, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return v
}

func RoundPtr(x *float64, places int32) *float64 {
	if x == nil {
		return nil
	}
	v := Round(*x, places)
	return &v
}
