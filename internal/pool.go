// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package internal

import (
	"sync"
)

// Pools of constant sized arrays of a given element type, to reduce memory allocation overhead
// for the scratch buffers of windowed filters. Arrays handed out by a pool have undefined contents.
type sizedPool[T any] struct {
	sync.RWMutex
	m map[int]*sync.Pool
}

func newSizedPool[T any]() *sizedPool[T] {
	return &sizedPool[T]{m: make(map[int]*sync.Pool)}
}

// Returns the pool for arrays of the given size, creating it if needed
func (p *sizedPool[T]) get(size int) *sync.Pool {
	p.RLock()
	pool:=p.m[size]
	p.RUnlock()
	if pool!=nil { return pool }

	p.Lock()
	defer p.Unlock()
	if pool=p.m[size]; pool==nil {   // re-check, another goroutine may have won the race
		pool=&sync.Pool{
			New: func() interface{} {
				arr:=make([]T, size)
				return &arr
			},
		}
		p.m[size]=pool
	}
	return pool
}

var poolFloat64=newSizedPool[float64]()

// Retrieves an array of given size from the pool
func GetArrayOfFloat64FromPool(size int) []float64 {
	return *(poolFloat64.get(size).Get().(*[]float64))
}

// Returns an array to the pool. The caller must not use it afterwards
func PutArrayOfFloat64IntoPool(arr []float64) {
	if cap(arr)==0 { return }
	arr=arr[:cap(arr)]
	poolFloat64.get(len(arr)).Put(&arr)
}
