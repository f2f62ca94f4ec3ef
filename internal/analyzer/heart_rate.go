package analyzer

import (
	"math"

	"vitalwatch/internal/domain"
)

const (
	// DefaultSampleRateHz 原型硬件（AD8232 采集板）的默认采样率
	DefaultSampleRateHz = 250

	// peakThresholdFraction R波检测的自适应幅值阈值：去直流后段内最大幅值的比例
	peakThresholdFraction = 0.6

	// refractoryMs 两个相邻R波之间的最小间隔（生理不应期），
	// 对应最高可检出约 300 bpm，足以压制 T 波误检
	refractoryMs = 200

	// 生理可信范围，超出即视为检测噪声并截断
	minBpm = 30
	maxBpm = 220
)

// Analyzer 从原始ECG波形片段估算心率。
// Stateless apart from the configured sampling rate; identical input always
// yields identical output.
type Analyzer struct {
	sampleRateHz int
}

func New(sampleRateHz int) *Analyzer {
	if sampleRateHz <= 0 {
		sampleRateHz = DefaultSampleRateHz
	}
	return &Analyzer{sampleRateHz: sampleRateHz}
}

// SampleRateHz 返回配置的采样率
func (a *Analyzer) SampleRateHz() int { return a.sampleRateHz }

// EstimateHeartRate 检测R波并换算为整数BPM。
// - 空序列 → domain.ErrInvalidInput
// - 检出峰数 < 2 → domain.ErrInsufficientSignal（调用方按"心率未知"处理，不是 0）
func (a *Analyzer) EstimateHeartRate(ecg []float64) (int, error) {
	if len(ecg) == 0 {
		return 0, domain.ErrInvalidInput
	}

	peaks := a.detectPeaks(ecg)
	if len(peaks) < 2 {
		return 0, domain.ErrInsufficientSignal
	}

	// 平均RR间期（样本数）→ 瞬时心率的均值
	var total int
	for i := 1; i < len(peaks); i++ {
		total += peaks[i] - peaks[i-1]
	}
	meanRR := float64(total) / float64(len(peaks)-1)

	bpm := int(math.Round(60.0 * float64(a.sampleRateHz) / meanRR))
	if bpm < minBpm {
		bpm = minBpm
	}
	if bpm > maxBpm {
		bpm = maxBpm
	}
	return bpm, nil
}

// detectPeaks 返回R波所在的样本下标（升序）。
// 去直流偏置后取段内最大幅值的固定比例作阈值，再做局部极大值判定，
// 并用不应期窗口去重。
func (a *Analyzer) detectPeaks(ecg []float64) []int {
	n := len(ecg)
	if n < 3 {
		return nil
	}

	var sum float64
	for _, v := range ecg {
		sum += v
	}
	mean := sum / float64(n)

	centered := make([]float64, n)
	maxAmp := 0.0
	for i, v := range ecg {
		centered[i] = v - mean
		if centered[i] > maxAmp {
			maxAmp = centered[i]
		}
	}
	if maxAmp <= 0 {
		// 平坦或单调向下的段没有可用的R波
		return nil
	}

	threshold := peakThresholdFraction * maxAmp
	refractory := a.sampleRateHz * refractoryMs / 1000

	var peaks []int
	lastPeak := -refractory - 1
	for i := 1; i < n-1; i++ {
		v := centered[i]
		if v < threshold {
			continue
		}
		// 局部极大值；平顶波取最右侧样本
		if v < centered[i-1] || v <= centered[i+1] {
			continue
		}
		if i-lastPeak <= refractory {
			// 不应期内的次峰：若更高则替换已接受的峰
			if len(peaks) > 0 && v > centered[peaks[len(peaks)-1]] {
				peaks[len(peaks)-1] = i
				lastPeak = i
			}
			continue
		}
		peaks = append(peaks, i)
		lastPeak = i
	}
	return peaks
}
