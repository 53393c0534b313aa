package heap

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/errors"
	"github.com/wippyai/wasm-libc/internal/memory"
)

// sizeMax is SIZE_MAX of a wasm32 guest.
const sizeMax = math.MaxUint32

func newFacade(t *testing.T, cfg Config) (*Facade, *memory.Buffer) {
	t.Helper()
	mem := memory.NewBuffer(1, 64)
	if cfg.Base == 0 {
		cfg.Base = 1024
	}
	return New(mem, cfg), mem
}

func fill(mem *memory.Buffer, ptr uint32, n int, b byte) {
	for i := 0; i < n; i++ {
		mem.Bytes()[int(ptr)+i] = b
	}
}

func requireBytes(t *testing.T, mem *memory.Buffer, ptr uint32, n int, b byte) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.Equal(t, b, mem.Bytes()[int(ptr)+i], "byte %d", i)
	}
}

func TestMalloc_Zero(t *testing.T) {
	f, _ := newFacade(t, Config{})
	b1, err := f.Malloc(0)
	require.NoError(t, err)
	b2, err := f.Malloc(0)
	require.NoError(t, err)
	assert.NotZero(t, b1)
	assert.NotZero(t, b2)
	assert.NotEqual(t, b1, b2)
	f.Free(b1)
	f.Free(b2)
	assert.Equal(t, 0, f.Arena().Stats().Live)
}

func TestMalloc_Simple(t *testing.T) {
	f, _ := newFacade(t, Config{})
	ptr, err := f.Malloc(100)
	require.NoError(t, err)
	assert.NotZero(t, ptr)
	assert.Zero(t, ptr%16, "malloc results are aligned to max_align_t")
	f.Free(ptr)
}

func TestMalloc_Overflow(t *testing.T) {
	f, _ := newFacade(t, Config{})
	ptr, err := f.Malloc(sizeMax)
	assert.Zero(t, ptr)
	assert.ErrorIs(t, err, errno.ENOMEM)
}

func TestMalloc_GrowsMemory(t *testing.T) {
	f, mem := newFacade(t, Config{})
	ptr, err := f.Malloc(200_000)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, uint64(mem.Size()), uint64(ptr)+200_000)
	assert.Positive(t, f.Arena().Stats().Grows)

	_, err = f.Malloc(64 << 16)
	assert.ErrorIs(t, err, errno.ENOMEM, "memory maximum is 64 pages")
}

func TestRealloc(t *testing.T) {
	t.Run("larger", func(t *testing.T) {
		f, mem := newFacade(t, Config{})
		ptr, err := f.Malloc(100)
		require.NoError(t, err)
		fill(mem, ptr, 100, 67)
		ptr, err = f.Realloc(ptr, 200)
		require.NoError(t, err)
		requireBytes(t, mem, ptr, 100, 67)
		f.Free(ptr)
	})

	t.Run("smaller", func(t *testing.T) {
		f, mem := newFacade(t, Config{})
		ptr, err := f.Malloc(200)
		require.NoError(t, err)
		fill(mem, ptr, 200, 67)
		ptr, err = f.Realloc(ptr, 100)
		require.NoError(t, err)
		requireBytes(t, mem, ptr, 100, 67)
		f.Free(ptr)
	})

	t.Run("multiple", func(t *testing.T) {
		f, mem := newFacade(t, Config{})
		ptr, err := f.Malloc(200)
		require.NoError(t, err)
		fill(mem, ptr, 200, 0x23)

		ptr, err = f.Realloc(ptr, 100)
		require.NoError(t, err)
		requireBytes(t, mem, ptr, 100, 0x23)

		ptr, err = f.Realloc(ptr, 50)
		require.NoError(t, err)
		requireBytes(t, mem, ptr, 50, 0x23)

		ptr, err = f.Realloc(ptr, 150)
		require.NoError(t, err)
		requireBytes(t, mem, ptr, 50, 0x23)

		fill(mem, ptr, 150, 0x23)
		ptr, err = f.Realloc(ptr, 425)
		require.NoError(t, err)
		requireBytes(t, mem, ptr, 150, 0x23)
		f.Free(ptr)
		assert.Equal(t, 0, f.Arena().Stats().Live)
	})

	t.Run("null", func(t *testing.T) {
		f, _ := newFacade(t, Config{})
		ptr, err := f.Realloc(0, 100)
		require.NoError(t, err)
		assert.NotZero(t, ptr)
		f.Free(ptr)
	})

	t.Run("overflow", func(t *testing.T) {
		f, mem := newFacade(t, Config{})
		ptr, err := f.Realloc(0, sizeMax)
		assert.Zero(t, ptr)
		assert.ErrorIs(t, err, errno.ENOMEM)

		ptr, err = f.Malloc(100)
		require.NoError(t, err)
		fill(mem, ptr, 100, 'A')
		np, err := f.Realloc(ptr, sizeMax)
		assert.Zero(t, np)
		assert.ErrorIs(t, err, errno.ENOMEM)

		l, ok := f.Arena().Layout(ptr)
		require.True(t, ok, "failed realloc must keep the block")
		assert.Equal(t, uint64(100), l.Size)
		requireBytes(t, mem, ptr, 100, 'A')
		f.Free(ptr)
	})

	t.Run("moves when blocked", func(t *testing.T) {
		f, mem := newFacade(t, Config{})
		a, err := f.Malloc(64)
		require.NoError(t, err)
		b, err := f.Malloc(64)
		require.NoError(t, err)
		fill(mem, a, 64, 'A')

		na, err := f.Realloc(a, 128)
		require.NoError(t, err)
		assert.NotEqual(t, a, na)
		requireBytes(t, mem, na, 64, 'A')

		_, ok := f.Arena().Layout(a)
		assert.False(t, ok)
		f.Free(na)
		f.Free(b)
	})

	t.Run("grows into freed neighbour", func(t *testing.T) {
		f, _ := newFacade(t, Config{})
		a, err := f.Malloc(64)
		require.NoError(t, err)
		b, err := f.Malloc(64)
		require.NoError(t, err)
		c, err := f.Malloc(64)
		require.NoError(t, err)
		f.Free(b)

		na, err := f.Realloc(a, 120)
		require.NoError(t, err)
		assert.Equal(t, a, na)
		f.Free(na)
		f.Free(c)
	})

	t.Run("keeps alignment", func(t *testing.T) {
		f, _ := newFacade(t, Config{})
		p, err := f.AlignedAlloc(256, 10)
		require.NoError(t, err)
		blocker, err := f.Malloc(8)
		require.NoError(t, err)

		np, err := f.Realloc(p, 1000)
		require.NoError(t, err)
		assert.Zero(t, np%256)
		l, _ := f.Arena().Layout(np)
		assert.Equal(t, Layout{Size: 1000, Align: 256}, l)
		f.Free(np)
		f.Free(blocker)
	})
}

func TestCalloc(t *testing.T) {
	t.Run("example", func(t *testing.T) {
		f, mem := newFacade(t, Config{})
		fill(mem, 1024, 4096, 0xff)
		ptr, err := f.Calloc(1, 100)
		require.NoError(t, err)
		requireBytes(t, mem, ptr, 100, 0)
		f.Free(ptr)
	})

	t.Run("realloc keeps zeroes", func(t *testing.T) {
		f, mem := newFacade(t, Config{})
		ptr, err := f.Calloc(1, 200)
		require.NoError(t, err)
		ptr, err = f.Realloc(ptr, 100)
		require.NoError(t, err)
		requireBytes(t, mem, ptr, 100, 0)
		ptr, err = f.Realloc(ptr, 425)
		require.NoError(t, err)
		requireBytes(t, mem, ptr, 100, 0)
		f.Free(ptr)
	})

	t.Run("illegal", func(t *testing.T) {
		f, _ := newFacade(t, Config{})
		ptr, err := f.Calloc(sizeMax, 100)
		assert.Zero(t, ptr)
		assert.ErrorIs(t, err, errno.ENOMEM)
	})

	t.Run("overflow", func(t *testing.T) {
		cases := [][2]uint64{
			{1, sizeMax},
			{sizeMax, sizeMax},
			{2, sizeMax},
			{sizeMax, 2},
			{1 << 32, 1 << 32},
			{math.MaxUint64, 2},
		}
		for _, c := range cases {
			f, _ := newFacade(t, Config{})
			ptr, err := f.Calloc(c[0], c[1])
			assert.Zero(t, ptr)
			assert.ErrorIs(t, err, errno.ENOMEM, "calloc(%d, %d)", c[0], c[1])
			assert.Equal(t, 0, f.Arena().Stats().Live, "no allocation on overflow")
		}
	})
}

func TestPosixMemalign(t *testing.T) {
	t.Run("bad", func(t *testing.T) {
		f, _ := newFacade(t, Config{})
		for align := uint64(0); align < 4; align++ {
			_, err := f.PosixMemalign(align, 1)
			assert.ErrorIs(t, err, errno.EINVAL, "align %d", align)
		}
		_, err := f.PosixMemalign(3, 1)
		assert.ErrorIs(t, err, errno.EINVAL)
		_, err = f.PosixMemalign(24, 1)
		assert.ErrorIs(t, err, errno.EINVAL)
		assert.Equal(t, 0, f.Arena().Stats().Live)
	})

	t.Run("example", func(t *testing.T) {
		f, _ := newFacade(t, Config{})
		for align := uint64(4); align < 4096; align *= 2 {
			ptr, err := f.PosixMemalign(align, 1)
			require.NoError(t, err)
			assert.Zero(t, uint64(ptr)%align)
			f.Free(ptr)
		}
	})

	t.Run("eight byte pointers", func(t *testing.T) {
		f, _ := newFacade(t, Config{PointerSize: 8})
		_, err := f.PosixMemalign(4, 16)
		assert.ErrorIs(t, err, errno.EINVAL)

		ptr, err := f.PosixMemalign(8, 16)
		require.NoError(t, err)
		assert.Zero(t, ptr%8)
	})
}

func TestAlignedAlloc(t *testing.T) {
	f, _ := newFacade(t, Config{})
	ptr, err := f.AlignedAlloc(4096, 0)
	require.NoError(t, err)
	assert.NotZero(t, ptr)
	assert.Zero(t, ptr%4096)

	_, err = f.AlignedAlloc(48, 16)
	assert.ErrorIs(t, err, errno.EINVAL)
}

func TestFree(t *testing.T) {
	f, _ := newFacade(t, Config{})
	f.Free(0)
	f.Free(12345)

	ptr, err := f.Malloc(32)
	require.NoError(t, err)
	f.Free(ptr)
	f.Free(ptr)
	assert.Equal(t, 0, f.Arena().Stats().Live)
}

func TestFreeSized(t *testing.T) {
	f, _ := newFacade(t, Config{})
	ptr, err := f.Malloc(100)
	require.NoError(t, err)
	require.NoError(t, f.FreeSized(ptr, 100))
	assert.Equal(t, 0, f.Arena().Stats().Live)

	ptr, err = f.AlignedAlloc(64, 100)
	require.NoError(t, err)
	require.NoError(t, f.FreeAlignedSized(ptr, 64, 100))
	assert.Equal(t, 0, f.Arena().Stats().Live)

	assert.NoError(t, f.FreeAlignedSized(0, 3, 1), "NULL is a no-op")
}

func TestFreeAlignedSized_InvalidLayoutIsFatal(t *testing.T) {
	f, _ := newFacade(t, Config{})
	ptr, err := f.Malloc(8)
	require.NoError(t, err)

	err = f.FreeAlignedSized(ptr, 3, 8)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))

	err = f.FreeAlignedSized(ptr, 16, math.MaxUint64)
	assert.True(t, errors.IsFatal(err))

	_, ok := f.Arena().Layout(ptr)
	assert.True(t, ok, "a fatal free releases nothing")
}

func TestAllocator(t *testing.T) {
	f, _ := newFacade(t, Config{})
	a := f.Allocator()
	ptr, err := a.Alloc(10, 8)
	require.NoError(t, err)
	assert.Zero(t, ptr%8)
	a.Free(ptr, 10, 8)
	assert.Equal(t, 0, f.Arena().Stats().Live)
}

func TestFacade_Counts(t *testing.T) {
	f, _ := newFacade(t, Config{Limit: 1 << 20})

	a, err := f.Malloc(10)
	require.NoError(t, err)
	b, err := f.Calloc(4, 4)
	require.NoError(t, err)
	_, err = f.Malloc(1 << 21)
	require.Error(t, err)
	_, err = f.Calloc(math.MaxUint64, 2)
	require.Error(t, err)

	f.Free(a)
	f.Free(a) // unknown by now
	f.Free(0)
	f.Free(b)

	assert.Equal(t, Counts{Allocs: 2, Frees: 2, Failures: 2}, f.Counts())
}

func TestFacade_CountsConcurrent(t *testing.T) {
	f, _ := newFacade(t, Config{})
	const workers, rounds = 8, 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				ptr, err := f.Malloc(32)
				if err != nil {
					t.Error(err)
					return
				}
				f.Free(ptr)
			}
		}()
	}
	wg.Wait()

	n := f.Counts()
	assert.Equal(t, uint64(workers*rounds), n.Allocs)
	assert.Equal(t, n.Allocs, n.Frees)
	assert.Zero(t, f.Arena().Stats().Live)
}
