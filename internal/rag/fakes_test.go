package rag

import "context"

// fakeEmbedder 测试用嵌入服务替身
type fakeEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
	batchFn func(ctx context.Context, texts []string) ([][]float32, error)
	calls   []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.embedFn != nil {
		return f.embedFn(ctx, text)
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts...)
	if f.batchFn != nil {
		return f.batchFn(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimensions() int {
	return 3
}

// fakeGenerator 测试用生成服务替身，记录收到的消息
type fakeGenerator struct {
	completeFn func(ctx context.Context, messages []ChatMessage) (string, error)
	calls      [][]ChatMessage
}

func (f *fakeGenerator) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	f.calls = append(f.calls, messages)
	if f.completeFn != nil {
		return f.completeFn(ctx, messages)
	}
	return "test answer", nil
}
