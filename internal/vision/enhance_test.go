package vision

import "testing"

func TestGammaTable_Identity(t *testing.T) {
	table := gammaTable(1.0)

	if len(table) != 256 {
		t.Fatalf("Expected 256 entries, got %d", len(table))
	}
	if table[0] != 0 {
		t.Errorf("Expected table[0]=0, got %d", table[0])
	}
	if table[255] != 255 {
		t.Errorf("Expected table[255]=255, got %d", table[255])
	}

	// gamma=1.0では恒等変換に近い（整数切り捨てで最大1の差）
	for i := 0; i < 256; i++ {
		diff := int(table[i]) - i
		if diff < -1 || diff > 1 {
			t.Fatalf("table[%d]=%d deviates from identity", i, table[i])
		}
	}
}

func TestGammaTable_BrightensWithGammaAboveOne(t *testing.T) {
	table := gammaTable(1.2)

	// gamma > 1 は中間調を持ち上げる
	if table[128] <= 128 {
		t.Errorf("Expected midtone to be brightened, got table[128]=%d", table[128])
	}

	// 単調非減少であること
	for i := 1; i < 256; i++ {
		if table[i] < table[i-1] {
			t.Fatalf("table is not monotonic at %d: %d < %d", i, table[i], table[i-1])
		}
	}
}

func TestGammaTable_InvalidGammaFallsBackToIdentity(t *testing.T) {
	table := gammaTable(0)

	if table[0] != 0 || table[255] != 255 {
		t.Errorf("Expected identity endpoints, got %d and %d", table[0], table[255])
	}
}
