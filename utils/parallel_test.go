package utils

import (
	"context"
	"image"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestParallelForEachPixel(t *testing.T) {
	size := image.Point{17, 23}
	var mu sync.Mutex
	visited := make(map[image.Point]int)
	ParallelForEachPixel(size, func(x, y int) {
		mu.Lock()
		visited[image.Point{x, y}]++
		mu.Unlock()
	})
	test.That(t, len(visited), test.ShouldEqual, size.X*size.Y)
	for p, n := range visited {
		test.That(t, n, test.ShouldEqual, 1)
		test.That(t, p.X, test.ShouldBeBetweenOrEqual, 0, size.X-1)
		test.That(t, p.Y, test.ShouldBeBetweenOrEqual, 0, size.Y-1)
	}
}

func TestRunInParallel(t *testing.T) {
	var mu sync.Mutex
	ran := 0
	fs := []SimpleFunc{}
	for i := 0; i < 5; i++ {
		fs = append(fs, func(ctx context.Context) error {
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		})
	}
	_, err := RunInParallel(context.Background(), fs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ran, test.ShouldEqual, 5)
}

func TestRunInParallelError(t *testing.T) {
	boom := errors.New("boom")
	fs := []SimpleFunc{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return boom },
	}
	_, err := RunInParallel(context.Background(), fs)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, boom), test.ShouldBeTrue)
}

func TestRunInParallelPanic(t *testing.T) {
	fs := []SimpleFunc{
		func(ctx context.Context) error { panic("bad") },
	}
	_, err := RunInParallel(context.Background(), fs)
	test.That(t, err, test.ShouldNotBeNil)
}
