// Copyright 2024 The evmint Authors
// This file is part of the evmint library.
//
// The evmint library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evmint library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evmint library. If not, see <http://www.gnu.org/licenses/>.

package vm

// Revision is an EVM specification revision. Revisions are totally ordered:
// a >= b means a activates every rule b does.
type Revision int

const (
	// Frontier is the revision Ethereum launched with.
	Frontier Revision = iota

	// Homestead is https://eips.ethereum.org/EIPS/eip-606
	Homestead

	// TangerineWhistle is https://eips.ethereum.org/EIPS/eip-608
	TangerineWhistle

	// SpuriousDragon is https://eips.ethereum.org/EIPS/eip-607
	SpuriousDragon

	// Byzantium is https://eips.ethereum.org/EIPS/eip-609
	Byzantium

	// Constantinople is https://eips.ethereum.org/EIPS/eip-1013
	Constantinople

	// Petersburg is https://eips.ethereum.org/EIPS/eip-1716
	Petersburg

	// Istanbul is https://eips.ethereum.org/EIPS/eip-1679
	Istanbul

	// Berlin activates EIP-2929 access lists and cold/warm gas accounting.
	Berlin

	// London activates EIP-3529 (reduced refunds) and BASEFEE.
	London

	numRevisions = int(London) + 1
)

// LatestRevision is the most recent revision this interpreter implements.
const LatestRevision = London

var revisionToString = [numRevisions]string{
	Frontier:         "Frontier",
	Homestead:        "Homestead",
	TangerineWhistle: "Tangerine Whistle",
	SpuriousDragon:   "Spurious Dragon",
	Byzantium:        "Byzantium",
	Constantinople:   "Constantinople",
	Petersburg:       "Petersburg",
	Istanbul:         "Istanbul",
	Berlin:           "Berlin",
	London:           "London",
}

func (r Revision) String() string {
	if r >= 0 && int(r) < numRevisions {
		return revisionToString[r]
	}
	return "unknown revision"
}
