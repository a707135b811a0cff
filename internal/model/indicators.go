package model

// Value is a derived number that may not exist for a bar yet, e.g. a
// 20-bar average on the 5th bar. Absent values must be skipped, not read as 0.
type Value struct {
	Float64 float64 `json:"v"`
	Valid   bool    `json:"ok"`
}

// Some wraps an available value.
func Some(v float64) Value { return Value{Float64: v, Valid: true} }

// None is the absent value.
var None = Value{}

// Get returns the number and whether it is available.
func (v Value) Get() (float64, bool) { return v.Float64, v.Valid }

// Indicators holds one column per derived field, each aligned with Series.Bars.
type Indicators struct {
	Returns []Value `json:"returns"`

	MA5  []Value `json:"ma5"`
	MA10 []Value `json:"ma10"`
	MA20 []Value `json:"ma20"`
	MA30 []Value `json:"ma30"`
	MA60 []Value `json:"ma60"`

	EMA12      []Value `json:"ema12"`
	EMA26      []Value `json:"ema26"`
	MACD       []Value `json:"macd"`
	MACDSignal []Value `json:"macd_signal"`
	MACDHist   []Value `json:"macd_hist"`

	RSI []Value `json:"rsi"`

	BBMiddle   []Value `json:"bb_middle"`
	BBUpper    []Value `json:"bb_upper"`
	BBLower    []Value `json:"bb_lower"`
	BBPosition []Value `json:"bb_position"`

	K []Value `json:"k"`
	D []Value `json:"d"`

	VolumeMA5   []Value `json:"volume_ma5"`
	VolumeRatio []Value `json:"volume_ratio"`
}

// BarIndicators is the set of indicator values for a single bar.
type BarIndicators struct {
	MA5         Value `json:"ma5"`
	MA10        Value `json:"ma10"`
	MA20        Value `json:"ma20"`
	MA30        Value `json:"ma30"`
	MA60        Value `json:"ma60"`
	MACD        Value `json:"macd"`
	MACDSignal  Value `json:"macd_signal"`
	MACDHist    Value `json:"macd_hist"`
	RSI         Value `json:"rsi"`
	BBUpper     Value `json:"bb_upper"`
	BBMiddle    Value `json:"bb_middle"`
	BBLower     Value `json:"bb_lower"`
	BBPosition  Value `json:"bb_position"`
	K           Value `json:"k"`
	D           Value `json:"d"`
	VolumeMA5   Value `json:"volume_ma5"`
	VolumeRatio Value `json:"volume_ratio"`
}

// At returns the indicator values of bar i.
func (ind *Indicators) At(i int) BarIndicators {
	return BarIndicators{
		MA5:         at(ind.MA5, i),
		MA10:        at(ind.MA10, i),
		MA20:        at(ind.MA20, i),
		MA30:        at(ind.MA30, i),
		MA60:        at(ind.MA60, i),
		MACD:        at(ind.MACD, i),
		MACDSignal:  at(ind.MACDSignal, i),
		MACDHist:    at(ind.MACDHist, i),
		RSI:         at(ind.RSI, i),
		BBUpper:     at(ind.BBUpper, i),
		BBMiddle:    at(ind.BBMiddle, i),
		BBLower:     at(ind.BBLower, i),
		BBPosition:  at(ind.BBPosition, i),
		K:           at(ind.K, i),
		D:           at(ind.D, i),
		VolumeMA5:   at(ind.VolumeMA5, i),
		VolumeRatio: at(ind.VolumeRatio, i),
	}
}

func at(col []Value, i int) Value {
	if i < 0 || i >= len(col) {
		return None
	}
	return col[i]
}

// IndicatorSnapshot carries the latest and previous bar's indicators.
type IndicatorSnapshot struct {
	Latest   BarIndicators `json:"latest"`
	Previous BarIndicators `json:"previous"`
}

// Snapshot builds the snapshot of the last two bars of an annotated series.
func (s *Series) Snapshot() IndicatorSnapshot {
	if s.Indicators == nil {
		return IndicatorSnapshot{}
	}
	n := len(s.Bars)
	return IndicatorSnapshot{
		Latest:   s.Indicators.At(n - 1),
		Previous: s.Indicators.At(n - 2),
	}
}
