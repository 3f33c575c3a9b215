package services

import (
  "bytes"
  "encoding/binary"
  "fmt"
)

type wavFormat struct {
  audioFormat   uint16
  numChannels   uint16
  sampleRate    uint32
  byteRate      uint32
  blockAlign    uint16
  bitsPerSample uint16
}

// parseWAV walks RIFF chunks and returns the fmt header plus raw PCM data.
func parseWAV(b []byte) (wavFormat, []byte, error) {
  var f wavFormat
  if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
    return f, nil, fmt.Errorf("not a RIFF/WAVE file")
  }
  var data []byte
  haveFmt := false
  off := 12
  for off+8 <= len(b) {
    id := string(b[off : off+4])
    size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
    body := off + 8
    if body+size > len(b) {
      size = len(b) - body
    }
    switch id {
    case "fmt ":
      if size < 16 {
        return f, nil, fmt.Errorf("short fmt chunk")
      }
      f.audioFormat = binary.LittleEndian.Uint16(b[body : body+2])
      f.numChannels = binary.LittleEndian.Uint16(b[body+2 : body+4])
      f.sampleRate = binary.LittleEndian.Uint32(b[body+4 : body+8])
      f.byteRate = binary.LittleEndian.Uint32(b[body+8 : body+12])
      f.blockAlign = binary.LittleEndian.Uint16(b[body+12 : body+14])
      f.bitsPerSample = binary.LittleEndian.Uint16(b[body+14 : body+16])
      haveFmt = true
    case "data":
      data = b[body : body+size]
    }
    off = body + size
    if size%2 == 1 {
      off++ // chunks are word aligned
    }
  }
  if !haveFmt {
    return f, nil, fmt.Errorf("missing fmt chunk")
  }
  if data == nil {
    return f, nil, fmt.Errorf("missing data chunk")
  }
  return f, data, nil
}

// ConcatWAV joins several WAV clips into one file. All clips must share the
// same sample format.
func ConcatWAV(clips [][]byte) ([]byte, error) {
  if len(clips) == 0 {
    return nil, fmt.Errorf("no clips to join")
  }
  var fmt0 wavFormat
  var pcm bytes.Buffer
  for i, clip := range clips {
    f, data, err := parseWAV(clip)
    if err != nil {
      return nil, fmt.Errorf("clip %d: %w", i, err)
    }
    if i == 0 {
      fmt0 = f
    } else if f != fmt0 {
      return nil, fmt.Errorf("clip %d: sample format mismatch", i)
    }
    pcm.Write(data)
  }
  return writeWAV(fmt0, pcm.Bytes()), nil
}

func writeWAV(f wavFormat, pcm []byte) []byte {
  var out bytes.Buffer
  out.WriteString("RIFF")
  binary.Write(&out, binary.LittleEndian, uint32(36+len(pcm)))
  out.WriteString("WAVE")
  out.WriteString("fmt ")
  binary.Write(&out, binary.LittleEndian, uint32(16))
  binary.Write(&out, binary.LittleEndian, f.audioFormat)
  binary.Write(&out, binary.LittleEndian, f.numChannels)
  binary.Write(&out, binary.LittleEndian, f.sampleRate)
  binary.Write(&out, binary.LittleEndian, f.byteRate)
  binary.Write(&out, binary.LittleEndian, f.blockAlign)
  binary.Write(&out, binary.LittleEndian, f.bitsPerSample)
  out.WriteString("data")
  binary.Write(&out, binary.LittleEndian, uint32(len(pcm)))
  out.Write(pcm)
  return out.Bytes()
}

// wavDurationMinutes reads playback length straight from the header. Returns
// ok=false for anything that is not a well formed WAV.
func wavDurationMinutes(b []byte) (float64, bool) {
  f, data, err := parseWAV(b)
  if err != nil || f.byteRate == 0 {
    return 0, false
  }
  seconds := float64(len(data)) / float64(f.byteRate)
  return seconds / 60.0, true
}
