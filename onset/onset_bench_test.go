package onset

import "testing"

func BenchmarkDetect(b *testing.B) {
	x := randomBursts(30*SampleRate, 1)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Detect(x)
	}
}

func BenchmarkNearest(b *testing.B) {
	ix := NewIndex(Detect(randomBursts(30*SampleRate, 1)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ix.Nearest(float64(i % (30 * SampleRate)))
	}
}
