package transposedconv2d

import (
	"github.com/born-ml/kernels/internal/layers"
	"github.com/born-ml/kernels/internal/parallel"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// im2col unrolls the patches of src [N, C, H, W] into col, one row of
// C*KH*KW elements per output position (n, outH, outW). Positions outside
// src read as zero.
func im2col[F tensor.Float](col, src []F, N, C, H, W, KH, KW, HOut, WOut, stride, padding int, cfg parallel.Config) {
	colWidth := C * KH * KW
	parallel.For(N, func(n int) {
		bufIdx := n * HOut * WOut * colWidth
		for outH := range HOut {
			for outW := range WOut {
				hStart := outH*stride - padding
				wStart := outW*stride - padding
				for c := range C {
					plane := src[(n*C+c)*H*W : (n*C+c+1)*H*W]
					for kh := range KH {
						h := hStart + kh
						for kw := range KW {
							w := wStart + kw
							if h >= 0 && h < H && w >= 0 && w < W {
								col[bufIdx] = plane[h*W+w]
							} else {
								col[bufIdx] = 0
							}
							bufIdx++
						}
					}
				}
			}
		}
	}, cfg)
}

// transposeWeights returns the weights [C, K*KH*KW] as [K*KH*KW, C].
func transposeWeights[F tensor.Float](wt []F, g geometry) []F {
	rows := g.k * g.kh * g.kw
	out := make([]F, rows*g.c)
	for c := range g.c {
		for r := range rows {
			out[r*g.c+c] = wt[c*rows+r]
		}
	}
	return out
}

// im2colForward multiplies every data column by the transposed weights and
// scatters the products into the value (col2im). Samples are independent.
type im2colForward[F tensor.Float] struct {
	lanes int
	cfg   parallel.Config
}

func (k im2colForward[F]) Compute(in *ForwardInput, par *Parameter, res *ForwardResult) status.Status {
	data := layers.Tensor(in.Map, Data)
	g := geometryOf(data, par)
	x := tensor.Data[F](data)
	wT := transposeWeights(tensor.Data[F](layers.Tensor(in.Map, Weights)), g)
	out := tensor.Data[F](res.Get(Value))

	hw := g.h * g.w
	rows := g.k * g.kh * g.kw
	sample := g.k * g.hOut * g.wOut
	parallel.For(g.n, func(n int) {
		dst := out[n*sample : (n+1)*sample]
		clear(dst)
		xT := make([]F, hw*g.c)
		for c := range g.c {
			for i, v := range x[(n*g.c+c)*hw : (n*g.c+c+1)*hw] {
				xT[i*g.c+c] = v
			}
		}
		for h := range g.h {
			for w := range g.w {
				patch := xT[(h*g.w+w)*g.c : (h*g.w+w+1)*g.c]
				for r := range rows {
					oc, kh, kw := r/(g.kh*g.kw), r/g.kw%g.kh, r%g.kw
					oh, ow := h*g.stride-g.pad+kh, w*g.stride-g.pad+kw
					if oh < 0 || oh >= g.hOut || ow < 0 || ow >= g.wOut {
						continue
					}
					dst[(oc*g.hOut+oh)*g.wOut+ow] += layers.Dot(wT[r*g.c:(r+1)*g.c], patch, k.lanes)
				}
			}
		}
	}, k.cfg)
	addBias(out, tensor.Data[F](layers.Tensor(in.Map, Biases)), g, k.cfg)
	return status.OK
}

// im2colBackward treats the gradient as a regular convolution of the input
// gradient with the weights: the unrolled input gradient has one row per data
// position and one column per weight of a channel.
type im2colBackward[F tensor.Float] struct {
	lanes int
	cfg   parallel.Config
}

func (k im2colBackward[F]) Compute(in *BackwardInput, par *Parameter, res *BackwardResult) status.Status {
	data := in.get(BackwardAuxData)
	g := geometryOf(data, par)
	x := tensor.Data[F](data)
	wt := tensor.Data[F](in.get(BackwardAuxWeights))
	ig := tensor.Data[F](in.get(InputGradient))

	hw := g.h * g.w
	width := g.k * g.kh * g.kw
	col := make([]F, g.n*hw*width)
	im2col(col, ig, g.n, g.k, g.hOut, g.wOut, g.kh, g.kw, g.h, g.w, g.stride, g.pad, k.cfg)

	if par.PropagateGradient {
		grad := tensor.Data[F](res.Get(layers.Gradient))
		parallel.ForRange(g.n*hw, func(start, end int) {
			for row := start; row < end; row++ {
				n, pos := row/hw, row%hw
				patch := col[row*width : (row+1)*width]
				for c := range g.c {
					grad[(n*g.c+c)*hw+pos] = layers.Dot(wt[c*width:(c+1)*width], patch, k.lanes)
				}
			}
		}, k.cfg)
	}

	dw := tensor.Data[F](res.Get(layers.WeightDerivatives))
	parallel.For(g.c, func(c int) {
		dst := dw[c*width : (c+1)*width]
		clear(dst)
		for n := range g.n {
			for pos, v := range x[(n*g.c+c)*hw : (n*g.c+c+1)*hw] {
				if v == 0 {
					continue
				}
				patch := col[(n*hw+pos)*width : (n*hw+pos+1)*width]
				for i, p := range patch {
					dst[i] += v * p
				}
			}
		}
	}, k.cfg)

	biasDerivatives(tensor.Data[F](res.Get(layers.BiasDerivatives)), ig, g, k.lanes)
	return status.OK
}
