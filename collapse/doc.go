/*Package collapse collapses duplicate read pairs that come from one
  physical DNA molecule into a single consensus read pair, for
  duplex-sequencing error correction.

  Collapsing Concepts:

  Two read pairs are in the same family if their
    1) reference
    2) 1-based alignment start of the leftmost mate
    3) strand, which is the direction R1 maps to
  are ALL identical.

  Reads of one family are not all duplicates of each other: the
  library attaches a random molecular adapter to both ends of every
  fragment, and each mate carries one of them.  The adapter positions
  selected by a mask, concatenated across mate 1 and mate 2, form the
  fingerprint of a pair.  Within a family, pairs are clustered into
  molecule classes by fingerprint: each pair joins the first class,
  in creation order, whose representative fingerprint has at most
  adapter_max_mismatch mismatches.  Clustering is greedy and depends
  on the order of the input stream, which must therefore be stable for
  output to be reproducible.

  Each molecule class yields one consensus read pair.  At every
  position the consensus base is the majority of A, C, G, and T over
  the class members; ties go to the representative's base.

  The two strands of a double-stranded molecule produce one class in
  the plus family and one in the minus family at the same coordinate,
  with the adapters swapped between mates.  Such classes are linked
  as duplex partners when their fingerprints, compared under the
  duplex mask, have at most duplex_max_mismatch mismatches.  Linking
  never changes either consensus; it is reported with the DX tag.

  Chimeras:

  When an adapter_sequence is configured, every pair whose adapters
  differ from the expected (possibly degenerate, IUPAC coded) pattern
  in more than adapter_max_mismatch positions is considered chimeric.
  Chimeric pairs are dropped before clustering if discard_chimeric is
  set, and tagged CH:i:1 in the original output otherwise.

  Streaming:

  Input must be sorted by coordinate.  A coordinate is finalized as
  soon as the stream moves past it, so memory is bounded by the
  largest coordinate rather than by the input.  A pair that arrives
  after a later coordinate aborts the run with a StreamOrderError.

  Outputs:

  Consensus reads are written as a FASTQ pair named
    <chrom>:<start>:<strand>:<class index>:<class size>:<adapter1>+<adapter2> DX:i:<0|1>
  Optionally, every original pair is written annotated with
    DS:i:<class size> DX:i:<0|1> [CH:i:1]
  A family size histogram counts classes by size, and a metrics file
  reports totals and a checksum of the consensus output.
*/
package collapse
