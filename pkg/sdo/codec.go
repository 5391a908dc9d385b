package sdo

import "encoding/binary"

// Frame is the fixed 8-byte SDO payload exchanged in a CAN data frame.
type Frame [8]byte

// EncodeClientRequest renders a ClientRequest as its 8-byte wire form
// per CiA 301 §7.2.4.
func EncodeClientRequest(req ClientRequest) (Frame, error) {
	var f Frame

	switch r := req.(type) {
	case InitUpload:
		f[0] = uint8(ccsInitUpload)
		r.Index.WriteTo(f[1:4])

	case UploadSegment:
		f[0] = uint8(ccsUploadSegment) | r.Toggle.encode()

	case InitSingleSegmentDownload:
		if r.Len < 1 || r.Len > 4 {
			return f, ErrEncodingArguments
		}
		tt := ExpeditedWithSize(r.Len)
		f[0] = uint8(ccsInitDownload) | tt.esBits()
		r.Index.WriteTo(f[1:4])
		copy(f[4:8], r.Data[:])

	case InitMultipleDownload:
		f[0] = uint8(ccsInitDownload)
		if r.TotalLen > 0 {
			f[0] |= 0x01
		}
		r.Index.WriteTo(f[1:4])
		binary.LittleEndian.PutUint32(f[4:8], r.TotalLen)

	case DownloadSegment:
		if r.Len > 7 {
			return f, ErrEncodingArguments
		}
		var last uint8
		if r.Last {
			last = 1
		}
		f[0] = uint8(ccsDownloadSegment) | r.Toggle.encode() | ((7 - r.Len) << 1) | last
		copy(f[1:8], r.Data[:])

	case AbortTransfer:
		f[0] = uint8(ccsAbortTransfer)
		r.Index.WriteTo(f[1:4])
		binary.LittleEndian.PutUint32(f[4:8], uint32(r.Code))

	default:
		return f, ErrEncodingArguments
	}

	return f, nil
}

// DecodeClientRequest parses an 8-byte SDO payload sent by a client.
func DecodeClientRequest(f Frame) (ClientRequest, error) {
	ccs, err := decodeClientCommandSpecifier(f[0])
	if err != nil {
		return nil, err
	}

	switch ccs {
	case ccsInitUpload:
		return InitUpload{Index: ReadIndex(f[1:4])}, nil

	case ccsUploadSegment:
		return UploadSegment{Toggle: decodeToggle(f[0])}, nil

	case ccsInitDownload:
		ix := ReadIndex(f[1:4])
		expedited := f[0]&0x02 != 0
		sized := f[0]&0x01 != 0

		switch {
		case !expedited:
			var total uint32
			if sized {
				total = binary.LittleEndian.Uint32(f[4:8])
			}
			return InitMultipleDownload{Index: ix, TotalLen: total}, nil

		case sized:
			length := 4 - ((f[0] >> 2) & 0x03)
			var data [4]byte
			copy(data[:], f[4:8])
			return InitSingleSegmentDownload{Index: ix, Len: length, Data: data}, nil

		default: // expedited, unsized
			var data [4]byte
			copy(data[:], f[4:8])
			return InitSingleSegmentDownload{Index: ix, Len: 0, Data: data}, nil
		}

	case ccsDownloadSegment:
		toggle := decodeToggle(f[0])
		last := f[0]&0x01 != 0
		n := 7 - ((f[0] >> 1) & 0x07)
		var data [7]byte
		copy(data[:], f[1:8])
		return DownloadSegment{Toggle: toggle, Last: last, Len: n, Data: data}, nil

	case ccsAbortTransfer:
		ix := ReadIndex(f[1:4])
		code := DecodeAbortCode(binary.LittleEndian.Uint32(f[4:8]))
		return AbortTransfer{Index: ix, Code: code}, nil
	}

	return nil, &UnknownClientCommandSpecifierError{Code: f[0] >> 5}
}

// EncodeServerResponse renders a ServerResponse as its 8-byte wire form
// per CiA 301 §7.2.4.
func EncodeServerResponse(resp ServerResponse) (Frame, error) {
	var f Frame

	switch r := resp.(type) {
	case UploadSingleSegment:
		if r.N > 4 {
			return f, ErrEncodingArguments
		}
		tt := ExpeditedWithSize(r.N)
		f[0] = uint8(scsInitUpload) | tt.esBits()
		r.Index.WriteTo(f[1:4])
		copy(f[4:8], r.Data[:])

	case UploadInitMultiples:
		tt := Normal()
		if r.Size == 0 {
			tt = NormalUnspecifiedSize()
		}
		f[0] = uint8(scsInitUpload) | tt.esBits()
		r.Index.WriteTo(f[1:4])
		binary.LittleEndian.PutUint32(f[4:8], r.Size)

	case UploadMultiples:
		if r.Len > 7 {
			return f, ErrEncodingArguments
		}
		var last uint8
		if r.Last {
			last = 1
		}
		f[0] = uint8(scsUploadSegment) | r.Toggle.encode() | ((7 - r.Len) << 1) | last
		copy(f[1:8], r.Data[:])

	case DownloadInitAck:
		f[0] = uint8(scsInitDownloadAck)
		r.Index.WriteTo(f[1:4])

	case DownloadSegmentAck:
		f[0] = uint8(scsDownloadSegAck) | r.Toggle.encode()

	case AbortTransferResponse:
		f[0] = uint8(scsAbortTransfer)
		r.Index.WriteTo(f[1:4])
		binary.LittleEndian.PutUint32(f[4:8], uint32(r.Code))

	default:
		return f, ErrEncodingArguments
	}

	return f, nil
}

// DecodeServerResponse parses an 8-byte SDO payload sent by a server.
func DecodeServerResponse(f Frame) (ServerResponse, error) {
	scs, err := decodeServerCommandSpecifier(f[0])
	if err != nil {
		return nil, err
	}

	switch scs {
	case scsInitUpload:
		ix := ReadIndex(f[1:4])
		tt, err := decodeTransferType(f[0])
		if err != nil {
			return nil, err
		}

		switch {
		case tt.Segmented && tt.SizeIndicated:
			size := binary.LittleEndian.Uint32(f[4:8])
			return UploadInitMultiples{Index: ix, Size: size}, nil
		case tt.Segmented:
			return UploadInitMultiples{Index: ix, Size: 0}, nil
		default:
			var data [4]byte
			copy(data[:], f[4:8])
			return UploadSingleSegment{Index: ix, N: tt.ExpeditedLen, Data: data}, nil
		}

	case scsUploadSegment:
		toggle := decodeToggle(f[0])
		last := f[0]&0x01 != 0
		n := 7 - ((f[0] >> 1) & 0x07)
		var data [7]byte
		copy(data[:], f[1:8])
		return UploadMultiples{Toggle: toggle, Last: last, Len: n, Data: data}, nil

	case scsInitDownloadAck:
		return DownloadInitAck{Index: ReadIndex(f[1:4])}, nil

	case scsDownloadSegAck:
		return DownloadSegmentAck{Toggle: decodeToggle(f[0])}, nil

	case scsAbortTransfer:
		ix := ReadIndex(f[1:4])
		code := DecodeAbortCode(binary.LittleEndian.Uint32(f[4:8]))
		return AbortTransferResponse{Index: ix, Code: code}, nil
	}

	return nil, &UnknownServerCommandSpecifierError{Code: f[0] >> 5}
}
