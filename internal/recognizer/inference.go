package recognizer

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	onnxrt "github.com/yalue/onnxruntime_go"

	"github.com/MeKo-Tech/platecrnn/internal/ctc"
	"github.com/MeKo-Tech/platecrnn/internal/mempool"
	"github.com/MeKo-Tech/platecrnn/internal/tensor"
	"github.com/MeKo-Tech/platecrnn/internal/utils"
)

// Result is the recognition output for one plate image.
type Result struct {
	Text            string
	Confidence      float64
	CharConfidences []float64
	Codes           []int
	Width           int
	Height          int
	TimingNs        struct {
		Preprocess int64
		Model      int64
		Decode     int64
		Total      int64
	}
}

// Recognize runs preprocessing, inference and decoding on a single image.
func (r *Recognizer) Recognize(img image.Image) (*Result, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	totalStart := time.Now()

	p0 := time.Now()
	resized, contentW, err := ResizeForRecognition(img, r.config.Params.ImageHeight, r.config.Params.ImageWidth)
	if err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}
	input, buf, err := NormalizeForRecognition(resized)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	preprocessNs := time.Since(p0).Nanoseconds()

	probs, modelNs, err := r.runInference(input)
	mempool.PutFloat32(buf)
	if err != nil {
		return nil, err
	}

	d0 := time.Now()
	result, err := r.decode(probs, contentW)
	if err != nil {
		return nil, err
	}
	result.TimingNs.Preprocess = preprocessNs
	result.TimingNs.Model = modelNs
	result.TimingNs.Decode = time.Since(d0).Nanoseconds()
	result.TimingNs.Total = time.Since(totalStart).Nanoseconds()
	return result, nil
}

// RecognizeFile loads an image from disk and recognizes it.
func (r *Recognizer) RecognizeFile(path string) (*Result, error) {
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return r.Recognize(img)
}

// runInference feeds the normalized tensor through the ONNX session and
// copies out the [1, T, C] distribution.
func (r *Recognizer) runInference(input tensor.Tensor) (tensor.Tensor, int64, error) {
	r.mu.RLock()
	session := r.session
	r.mu.RUnlock()
	if session == nil {
		return tensor.Tensor{}, 0, errors.New("recognizer session is nil")
	}

	m0 := time.Now()
	inputTensor, err := onnxrt.NewTensor(onnxrt.NewShape(input.Shape...), input.Data)
	if err != nil {
		return tensor.Tensor{}, 0, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() { _ = inputTensor.Destroy() }()

	outputs := []onnxrt.Value{nil}
	if err := session.Run([]onnxrt.Value{inputTensor}, outputs); err != nil {
		return tensor.Tensor{}, 0, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				_ = o.Destroy()
			}
		}
	}()

	floatTensor, ok := outputs[0].(*onnxrt.Tensor[float32])
	if !ok {
		return tensor.Tensor{}, 0, fmt.Errorf("expected float32 tensor, got %T", outputs[0])
	}
	shape := outputs[0].GetShape()
	if len(shape) != 3 {
		return tensor.Tensor{}, 0, fmt.Errorf("expected [N, T, C] output, got shape %v", shape)
	}

	// Copy before the ONNX value is destroyed.
	src := floatTensor.GetData()
	data := make([]float32, len(src))
	copy(data, src)
	out, err := tensor.FromData(data, shape...)
	if err != nil {
		return tensor.Tensor{}, 0, err
	}
	return out, time.Since(m0).Nanoseconds(), nil
}

// decode turns the model output into text. The scaled content width bounds
// how many timesteps carry signal; padding timesteps are ignored.
func (r *Recognizer) decode(probs tensor.Tensor, contentW int) (*Result, error) {
	tDim := probs.Dim(1)
	inputLen := contentW / r.config.Params.NPool
	if inputLen < 1 {
		inputLen = 1
	}
	if inputLen > tDim {
		inputLen = tDim
	}

	decoded, err := ctc.GreedyDecode(probs, []int{inputLen}, ctc.Blank)
	if err != nil {
		return nil, err
	}
	d := decoded[0]

	var sb strings.Builder
	for _, code := range d.Collapsed {
		unit, err := r.alphabet.Decode(code)
		if err != nil {
			return nil, fmt.Errorf("decode code %d: %w", code, err)
		}
		sb.WriteString(unit)
	}

	return &Result{
		Text:            sb.String(),
		Confidence:      ctc.SequenceConfidence(d.Probs),
		CharConfidences: d.Probs,
		Codes:           d.Collapsed,
		Width:           contentW,
		Height:          r.config.Params.ImageHeight,
	}, nil
}
