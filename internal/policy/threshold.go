package policy

// 阈值与原型设备固件保持一致，调整需与产品确认
const (
	TempHighC        = 37.5
	HeartRateLowBpm  = 60
	HeartRateHighBpm = 100
)

// Evaluate 判定一条读数是否触发报警。
// Rule: temperature must be high AND heart rate out of range at the same
// time (conjunction). A disjunctive rule would fire on either condition
// alone; the conjunctive form is the agreed product behavior.
// Pure and total: no side effects, no failure modes.
func Evaluate(temperatureC float64, heartRateBpm int) bool {
	tempTooHigh := temperatureC > TempHighC
	heartRateAbnormal := heartRateBpm < HeartRateLowBpm || heartRateBpm > HeartRateHighBpm
	return tempTooHigh && heartRateAbnormal
}
