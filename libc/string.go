package libc

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/internal/memory"
	"github.com/wippyai/wasm-libc/thread"
)

// messageBufSize is the size of the per-thread strerror and strsignal
// buffers.
const messageBufSize = 256

// Real-time signals as musl numbers them; two are reserved by the
// threading layer.
const (
	sigRTMin = 32 + 2
	sigRTMax = 64
)

var signalNames = [...]string{
	"Unknown signal 0",
	"Hangup",
	"Interrupt",
	"Quit",
	"Illegal instruction",
	"Trace/breakpoint trap",
	"Aborted",
	"Bus error",
	"Floating point exception",
	"Killed",
	"User defined signal 1",
	"Segmentation fault",
	"User defined signal 2",
	"Broken pipe",
	"Alarm clock",
	"Terminated",
	"Stack fault",
	"Child exited",
	"Continued",
	"Stopped (signal)",
	"Stopped",
	"Stopped (tty input)",
	"Stopped (tty output)",
	"Urgent I/O condition",
	"CPU time limit exceeded",
	"File size limit exceeded",
	"Virtual timer expired",
	"Profiling timer expired",
	"Window changed",
	"I/O possible",
	"Power failure",
	"Bad system call",
}

// signalMessage renders the strsignal text for num.
func signalMessage(num int32) string {
	switch {
	case num >= 0 && int(num) < len(signalNames):
		return signalNames[num]
	case num >= sigRTMin && num <= sigRTMax:
		return "Real-time signal " + strconv.Itoa(int(num-sigRTMin))
	default:
		return "Unknown signal " + strconv.Itoa(int(num))
	}
}

// cellLayout is the size and alignment each thread cell is allocated with.
func cellLayout(c thread.Cell) (size, align uint32) {
	if c == thread.CellErrno {
		return 4, 4
	}
	return messageBufSize, 1
}

// cell returns the thread's block c, allocating it on first use.
func (c *call) cell(which thread.Cell) uint32 {
	if addr := c.thread.Cell(which); addr != 0 {
		return addr
	}
	size, align := cellLayout(which)
	addr, err := c.heap().Allocator().Alloc(size, align)
	if err != nil {
		c.abort(err)
	}
	c.thread.SetCell(which, addr)
	Logger().Debug("thread cell allocated",
		zap.String("process", c.proc.name),
		zap.Uint32("tid", uint32(c.thread.ID())),
		zap.Int("cell", int(which)),
		zap.Uint32("addr", addr))
	return addr
}

// putMessage copies msg into the guest buffer [buf, buf+size), truncating
// so the result is always NUL-terminated.
func (c *call) putMessage(buf, size uint32, msg string) {
	if size == 0 {
		return
	}
	n := min(uint32(len(msg)), size-1)
	dst := c.view(buf, n+1)
	if uint32(len(dst)) < n+1 {
		c.trap(memoryFault(buf, n+1))
	}
	copy(dst, msg[:n])
	dst[n] = 0
}

// strtok keeps its position in the calling thread.
func strtok(c *call, stack []uint64) {
	s, sep := uint32(stack[0]), uint32(stack[1])
	tok, next := c.tokenize(s, sep, c.thread.TokenCursor())
	c.thread.SetTokenCursor(next)
	stack[0] = uint64(tok)
}

func strtokR(c *call, stack []uint64) {
	s, sep, lasts := uint32(stack[0]), uint32(stack[1]), uint32(stack[2])
	var saved uint32
	if s == 0 {
		saved = c.readU32(lasts)
	}
	tok, next := c.tokenize(s, sep, saved)
	c.writeU32(lasts, next)
	stack[0] = uint64(tok)
}

// tokenize finds the next token of s, or of the string at saved when s is
// NULL. The separator ending the token is overwritten with NUL. It returns
// the token (0 when none is left) and the position to resume from.
func (c *call) tokenize(s, sep, saved uint32) (tok, next uint32) {
	if s == 0 {
		if saved == 0 {
			return 0, 0
		}
		s = saved
	}
	mem := c.memory()
	seps, err := memory.CString(mem, sep)
	if err != nil {
		c.trap(err)
	}
	var set [256]bool
	for _, b := range seps {
		set[b] = true
	}
	str, err := memory.CString(mem, s)
	if err != nil {
		c.trap(err)
	}

	i := 0
	for i < len(str) && set[str[i]] {
		i++
	}
	if i == len(str) {
		return 0, s + uint32(i)
	}
	start := i
	for i < len(str) {
		if set[str[i]] {
			if err := mem.WriteU8(s+uint32(i), 0); err != nil {
				c.trap(err)
			}
			return s + uint32(start), s + uint32(i) + 1
		}
		i++
	}
	return s + uint32(start), s + uint32(i)
}

// strerror renders into the thread's buffer. Unknown codes set EINVAL.
func strerror(c *call, stack []uint64) {
	code := errno.Errno(int32(uint32(stack[0])))
	buf := c.cell(thread.CellStrerror)
	c.putMessage(buf, messageBufSize, errno.Message(code))
	if code != 0 && !code.Known() {
		c.setErrno(errno.EINVAL)
	}
	stack[0] = uint64(buf)
}

// strerrorR returns the error instead of setting errno: ERANGE when buf
// cannot hold a known message, EINVAL (after rendering "Unknown error N")
// for unknown codes.
func strerrorR(c *call, stack []uint64) {
	code := errno.Errno(int32(uint32(stack[0])))
	buf, size := uint32(stack[1]), uint32(stack[2])
	msg := errno.Message(code)
	if code != 0 && !code.Known() {
		if buf != 0 {
			c.putMessage(buf, size, msg)
		}
		stack[0] = uint64(uint32(errno.EINVAL))
		return
	}
	if buf == 0 || uint64(len(msg))+1 > uint64(size) {
		stack[0] = uint64(uint32(errno.ERANGE))
		return
	}
	c.putMessage(buf, size, msg)
	stack[0] = 0
}

func strsignal(c *call, stack []uint64) {
	buf := c.cell(thread.CellStrsignal)
	c.putMessage(buf, messageBufSize, signalMessage(int32(uint32(stack[0]))))
	stack[0] = uint64(buf)
}

func strdup(c *call, stack []uint64) {
	src, err := memory.CString(c.memory(), uint32(stack[0]))
	if err != nil {
		c.trap(err)
	}
	stack[0] = uint64(c.dup(src))
}

func strndup(c *call, stack []uint64) {
	src, err := memory.CString(c.memory(), uint32(stack[0]))
	if err != nil {
		c.trap(err)
	}
	if n := uint32(stack[1]); uint64(n) < uint64(len(src)) {
		src = src[:n]
	}
	stack[0] = uint64(c.dup(src))
}

// dup copies src and a terminating NUL into a fresh malloc block. It
// returns 0 with ENOMEM when the heap is exhausted.
func (c *call) dup(src []byte) uint32 {
	size := uint64(len(src)) + 1
	if size > 1<<32-1 {
		c.setErrno(errno.ENOMEM)
		return 0
	}
	h := c.heap()
	ptr, err := h.Allocator().Alloc(uint32(size), uint32(h.Config().MaxAlign))
	if err != nil {
		c.fail(err)
		return 0
	}
	// src may alias memory that Alloc just grew; copy before writing.
	data := make([]byte, size)
	copy(data, src)
	if err := c.memory().Write(ptr, data); err != nil {
		c.trap(err)
	}
	return ptr
}
