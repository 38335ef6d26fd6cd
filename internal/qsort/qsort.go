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


package qsort

import (
	"math"
)


// Select median of an array of float64. Partially reorders the array.
// For even lengths, returns the mean of the two middle elements.
// Array must not contain IEEE NaN
func QSelectMedianFloat64(a []float64) float64 {
	n:=len(a)
	upper:=QSelectFloat64(a, (n>>1)+1)
	if (n&1)!=0 { return upper }

	// the lower middle element is the maximum of the left partition
	lower:=a[0]
	for _, v:=range a[1:n>>1] {
		if v>lower { lower=v }
	}
	return 0.5*(lower+upper)
}


// Select kth lowest element from an array of float64, with k counted from 1.
// Partially reorders the array, such that a[:k-1] holds values less or equal the result.
// Array must not contain IEEE NaN
func QSelectFloat64(a []float64, k int) float64 {
	left, right:=0, len(a)-1
	for left<right {
		// partition
		mid:=(left+right)>>1
		pivot := a[mid]
		l, r  := left-1, right+1
		for {
			for {
				l++
				if a[l]>=pivot { break }
			}
			for {
				r--
				if a[r]<=pivot { break }
			}
			if l >= r { break } // index in r
			a[l], a[r] = a[r], a[l]
		}
		index:=r

		offset:=index-left+1
		if k<=offset {
			right=index
		} else {
			left=index+1
			k=k-offset
		}
	}
	return a[left]
}


// Calculates the median of a float64 slice of length nine
// Modifies the elements in place
// From https://stackoverflow.com/questions/45453537/optimal-9-element-sorting-network-that-reduces-to-an-optimal-median-of-9-network
// See also http://ndevilla.free.fr/median/median/src/optmed.c for other sizes
// Array must not contain IEEE NaN
func MedianFloat64Slice9(a []float64) float64 {       // 30x min/max
	if a[0]>a[1] { a[0], a[1] = a[1], a[0]}  // swap(a,0,1)
	if a[3]>a[4] { a[3], a[4] = a[4], a[3]}  // swap(a,3,4)
	if a[6]>a[7] { a[6], a[7] = a[7], a[6]}  // swap(a,6,7)
	if a[1]>a[2] { a[1], a[2] = a[2], a[1]}  // swap(a,1,2)
	if a[4]>a[5] { a[4], a[5] = a[5], a[4]}  // swap(a,4,5)
	if a[7]>a[8] { a[7], a[8] = a[8], a[7]}  // swap(a,7,8)
	if a[0]>a[1] { a[0], a[1] = a[1], a[0]}  // swap(a,0,1)
	if a[3]>a[4] { a[3], a[4] = a[4], a[3]}  // swap(a,3,4)
	if a[6]>a[7] { a[6], a[7] = a[7], a[6]}  // swap(a,6,7)
	if a[0]>a[3] { a[3]       = a[0]      }  // max (a,0,3)
	if a[3]>a[6] { a[6]       = a[3]      }  // max (a,3,6)
	if a[1]>a[4] { a[1], a[4] = a[4], a[1]}  // swap(a,1,4)
	if a[4]>a[7] { a[4]       = a[7]      }  // min (a,4,7)
	if a[1]>a[4] { a[4]       = a[1]      }  // max (a,1,4)
	if a[5]>a[8] { a[5]       = a[8]      }  // min (a,5,8)
	if a[2]>a[5] { a[2]       = a[5]      }  // min (a,2,5)
	if a[2]>a[4] { a[2], a[4] = a[4], a[2]}  // swap(a,2,4)
	if a[4]>a[6] { a[4]       = a[6]      }  // min (a,4,6)
	if a[2]>a[4] { a[4]       = a[2]      }  // max (a,2,4)
	return a[4]
}

// Calculates the median of a float64 slice
// Modifies the elements in place
// Array must not contain IEEE NaN
func MedianFloat64(a []float64) float64 {
	if len(a)==0 { return math.NaN() }
	if len(a)==9 { return MedianFloat64Slice9(a) }
	return QSelectMedianFloat64(a)
}
