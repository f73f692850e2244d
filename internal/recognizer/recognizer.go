// Package recognizer runs an exported plate-recognition model through ONNX
// Runtime and decodes its per-timestep distributions into text.
package recognizer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	onnxrt "github.com/yalue/onnxruntime_go"

	"github.com/MeKo-Tech/platecrnn/internal/alphabet"
	"github.com/MeKo-Tech/platecrnn/internal/config"
)

// Config holds the recognizer settings.
type Config struct {
	ModelPath    string
	AlphabetPath string
	Params       config.Params
	NumThreads   int
}

// DefaultConfig returns recognizer settings with the stock architecture
// parameters.
func DefaultConfig() Config {
	return Config{
		Params: config.DefaultParams(),
	}
}

// Recognizer wraps an ONNX session together with the alphabet used to decode
// its output. Safe for concurrent use.
type Recognizer struct {
	config     Config
	session    *onnxrt.DynamicAdvancedSession
	inputInfo  onnxrt.InputOutputInfo
	outputInfo onnxrt.InputOutputInfo
	alphabet   *alphabet.Alphabet
	mu         sync.RWMutex
}

// New creates a recognizer from an exported model and its alphabet lookup.
func New(cfg Config) (*Recognizer, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path cannot be empty")
	}
	if cfg.AlphabetPath == "" {
		return nil, errors.New("alphabet path cannot be empty")
	}
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	if err := setONNXLibraryPath(); err != nil {
		return nil, fmt.Errorf("failed to set ONNX Runtime library path: %w", err)
	}
	if !onnxrt.IsInitialized() {
		if err := onnxrt.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
		}
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("expected 1 input, got %d", len(inputs))
	}
	if len(outputs) != 1 {
		return nil, fmt.Errorf("expected 1 output, got %d", len(outputs))
	}
	inputInfo := inputs[0]
	outputInfo := outputs[0]
	if len(inputInfo.Dimensions) != 4 {
		return nil, fmt.Errorf("expected 4D input tensor, got %dD", len(inputInfo.Dimensions))
	}
	// Input is [N, H, W, C]. If the model fixes a height, adopt it.
	if h := inputInfo.Dimensions[1]; h > 0 && int(h) != cfg.Params.ImageHeight {
		slog.Debug("Adopting model input height", "height", h)
		cfg.Params.ImageHeight = int(h)
	}

	a, err := alphabet.Load(cfg.AlphabetPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("Alphabet loaded", "classes", a.Size())

	sessionOptions, err := onnxrt.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer func() {
		if err := sessionOptions.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying session options: %v\n", err)
		}
	}()

	if cfg.NumThreads > 0 {
		if err := sessionOptions.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			return nil, fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	session, err := onnxrt.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{inputInfo.Name},
		[]string{outputInfo.Name},
		sessionOptions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Recognizer{
		config:     cfg,
		session:    session,
		inputInfo:  inputInfo,
		outputInfo: outputInfo,
		alphabet:   a,
	}, nil
}

// Close releases the ONNX session.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session != nil {
		if err := r.session.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying session: %v\n", err)
		}
		r.session = nil
	}
	return nil
}

// Alphabet returns the loaded alphabet.
func (r *Recognizer) Alphabet() *alphabet.Alphabet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.alphabet
}

// Config returns a copy of the recognizer's configuration.
func (r *Recognizer) Config() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

func setONNXLibraryPath() error {
	if path := findSystemLibraryPath(); path != "" {
		onnxrt.SetSharedLibraryPath(path)
		return nil
	}

	root, err := findProjectRoot()
	if err != nil {
		return err
	}
	libPath, err := getProjectLibraryPath(root)
	if err != nil {
		return err
	}
	onnxrt.SetSharedLibraryPath(libPath)
	return nil
}

// findSystemLibraryPath checks common system locations for the ONNX Runtime library.
func findSystemLibraryPath() string {
	systemPaths := []string{
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/libonnxruntime.so",
		"/opt/onnxruntime/cpu/lib/libonnxruntime.so",
	}
	for _, p := range systemPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	root := cwd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root, nil
		}
		parent := filepath.Dir(root)
		if parent == root {
			return "", errors.New("could not find project root")
		}
		root = parent
	}
}

func getProjectLibraryPath(root string) (string, error) {
	libName, err := getLibraryName()
	if err != nil {
		return "", err
	}
	libPath := filepath.Join(root, "onnxruntime", "lib", libName)
	if _, err := os.Stat(libPath); err != nil {
		return "", fmt.Errorf("ONNX Runtime library not found at %s", libPath)
	}
	return libPath, nil
}

func getLibraryName() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return "libonnxruntime.so", nil
	case "darwin":
		return "libonnxruntime.dylib", nil
	case "windows":
		return "onnxruntime.dll", nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}
