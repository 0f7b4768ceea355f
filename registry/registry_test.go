package registry

import (
	"sync"
	"testing"
)

func TestDeviceByNameCreatesOnce(t *testing.T) {
	r := New()

	d1, created := r.DeviceByName("echo", 9000)
	if !created {
		t.Fatal("expected first mention to create the device")
	}
	if d1.Name != "echo" || d1.Port != 9000 {
		t.Errorf("device = %+v, want Name=echo Port=9000", d1)
	}

	d2, created := r.DeviceByName("echo", 9001)
	if created {
		t.Error("expected second mention to reuse the existing device")
	}
	if d2 != d1 {
		t.Error("expected the same *Device instance on repeat lookup")
	}
	if d2.Port != 9000 {
		t.Error("port should not change on repeat mention")
	}

	if got := r.NameCount(); got != 1 {
		t.Errorf("NameCount() = %d, want 1", got)
	}
}

func TestDeviceByChannelCreatesOnce(t *testing.T) {
	r := New()

	d1, created := r.DeviceByChannel(3, 9000)
	if !created {
		t.Fatal("expected first mention to create the device")
	}
	if !d1.ByChannel || d1.Channel != 3 {
		t.Errorf("device = %+v, want ByChannel=true Channel=3", d1)
	}

	_, created = r.DeviceByChannel(3, 9999)
	if created {
		t.Error("expected second mention to reuse the existing device")
	}
}

func TestResolveBindsOnceAndCountsOnce(t *testing.T) {
	r := New()
	r.DeviceByName("echo", 9000)

	if !r.Resolve("echo", "10.0.0.5") {
		t.Fatal("expected first resolve to succeed")
	}
	if got := r.ResolvedCount(); got != 1 {
		t.Errorf("ResolvedCount() = %d, want 1", got)
	}

	if r.Resolve("echo", "10.0.0.9") {
		t.Error("expected second resolve of the same device to be rejected")
	}
	if got := r.ResolvedCount(); got != 1 {
		t.Errorf("ResolvedCount() after re-resolve attempt = %d, want 1", got)
	}

	d, _ := r.LookupName("echo")
	if d.IP() != "10.0.0.5" {
		t.Errorf("IP() = %q, want the first bound address", d.IP())
	}
}

func TestResolveUnknownNameIsNoop(t *testing.T) {
	r := New()
	if r.Resolve("ghost", "10.0.0.1") {
		t.Error("expected resolve of an unregistered name to report false")
	}
	if got := r.ResolvedCount(); got != 0 {
		t.Errorf("ResolvedCount() = %d, want 0", got)
	}
}

func TestAllResolved(t *testing.T) {
	r := New()
	if !r.AllResolved() {
		t.Error("an empty registry should report AllResolved")
	}

	r.DeviceByName("a", 9000)
	r.DeviceByName("b", 9000)
	if r.AllResolved() {
		t.Error("expected AllResolved false with unresolved names present")
	}

	r.Resolve("a", "10.0.0.1")
	if r.AllResolved() {
		t.Error("expected AllResolved false with one name still unresolved")
	}

	r.Resolve("b", "10.0.0.2")
	if !r.AllResolved() {
		t.Error("expected AllResolved true once every name is bound")
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	r := New()
	r.DeviceByName("echo", 9000)
	r.DeviceByChannel(1, 9001)
	r.Resolve("echo", "10.0.0.5")

	views := r.Snapshot()
	if len(views) != 2 {
		t.Fatalf("Snapshot() len = %d, want 2", len(views))
	}

	r.Resolve("echo", "10.0.0.9") // no-op: already resolved
	for _, v := range views {
		if v.Name == "echo" && v.IP != "10.0.0.5" {
			t.Errorf("snapshot entry mutated after capture: IP = %q", v.IP)
		}
	}
}

func TestConcurrentResolveIsRaceFree(t *testing.T) {
	r := New()
	const n = 50
	for i := 0; i < n; i++ {
		r.DeviceByName(string(rune('a'+i%26))+string(rune('0'+i/26)), 9000)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a'+i%26)) + string(rune('0'+i/26))
			r.Resolve(name, "10.0.0.1")
			r.Snapshot()
			r.ResolvedCount()
		}(i)
	}
	wg.Wait()

	if got := r.ResolvedCount(); got != n {
		t.Errorf("ResolvedCount() = %d, want %d", got, n)
	}
}
