// Imports, inspects, splits and exports bounding box annotation projects.
//
// Reads KITTI, Sloth, AWS detect-labels and VGG Image Annotator labels into a project and writes
// YOLO, COCO, dataset JSON, project JSON, KITTI, Sloth, TFRecord and VIA outputs.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sensorable/bboxlabel"
)

var (
	configFilePath  string // The YAML config file.
	projectFilePath string // The project file to load (and to import into).

	convertFrom format // The source format of an import.
	convertTo   format // The target format.

	imageDirPath             string   // The input directory with the labeled images.
	labelFileOrDirPath       string   // The input label directory or file, depending on the format.
	outFileOrDirPaths        []string // The output file or dir path(s), depending on the format.
	outSplits                []int    // The cumulative split percentages for the output datasets.
	tfRecordLabelMapFilePath string   // The TFRecord label map file.
	numShardFiles            int      // The number of shard files to create.
	minConfidence            float64  // The min. confidence of imported AWS instances.

	classMappings   string // A comma-separated string of old=new class renames.
	resolveClassIDs bool   // Re-assign box class ids from their class names.
	copyImages      bool   // Copy the images into the YOLO output.
	imageMaxSide    int    // Down-scale copied images to this longer side.
	printStats      bool   // Print the project statistics.
)

type format int

// The known label formats.
const (
	Unknown format = iota // If an unknown format is specified.
	AWSDetectLabels
	Coco
	DatasetJSON
	Kitti
	ProjectJSON
	Sloth
	TFRecord
	VIA // VGG Image Annotator
	Yolo
	None // No format given.
)

func formatFrom(s string) format {
	switch s {
	case "":
		return None
	case "aws-dl":
		return AWSDetectLabels
	case "coco":
		return Coco
	case "json":
		return DatasetJSON
	case "kitti":
		return Kitti
	case "project":
		return ProjectJSON
	case "sloth":
		return Sloth
	case "tfrecord":
		return TFRecord
	case "via":
		return VIA
	case "yolo":
		return Yolo
	}
	return Unknown
}

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr, "  aws-dl input options:\t\t-labels <dir> -images <dir> [-min-confidence]")
		_, _ = fmt.Fprintln(os.Stderr, "  kitti input options:\t\t-labels <dir> -images <dir>")
		_, _ = fmt.Fprintln(os.Stderr, "  sloth input options:\t\t-labels <file>")
		_, _ = fmt.Fprintln(os.Stderr, "  via input options:\t\t-labels <file>")
		_, _ = fmt.Fprintln(os.Stderr, "  yolo, kitti output options:\t-out <dir>")
		_, _ = fmt.Fprintln(os.Stderr, "  coco, json, project, sloth, via output options:\t-out <file>")
		_, _ = fmt.Fprintln(os.Stderr, "  tfrecord output options:\t-out <file>"+
				" -tfrecord-label-map-file [-num-shards]")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	printUsageAndExit := func(msg ...interface{}) {
		log.Print(msg...)
		flag.Usage()
		os.Exit(1)
	}

	// A .env file may provide the default config file path.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Print("Failed to read .env: ", err)
	}

	// Project arguments.
	flag.StringVar(&configFilePath, "config", os.Getenv("BBOXLABEL_CONFIG"),
		"The YAML config file `path` (default $BBOXLABEL_CONFIG)")
	flag.StringVar(&projectFilePath, "project", projectFilePath,
		"The project file `path`; a missing file starts an empty project")

	// Format arguments.
	from := flag.String("from", "", "The source `format` to import into the project")
	to := flag.String("to", "", "The target `format`")

	// Path arguments.
	flag.StringVar(&imageDirPath, "images", imageDirPath,
		"The `path` to the image input directory (kitti, aws-dl)")
	flag.StringVar(&labelFileOrDirPath, "labels", labelFileOrDirPath,
		"The `path` to the label input file (sloth, via) or directory (kitti, aws-dl)")
	outPaths := flag.String("out", "",
		"The comma-separated paths (`path[,...]`) to the output files or directories;"+
				" must be one path per value in flag -split")
	splits := flag.String("split", "100",
		"The comma-separated output split percentages (`percent[,...]`) to divide the images into;"+
				" must add up to 100%")
	flag.StringVar(&tfRecordLabelMapFilePath, "tfrecord-label-map-file", tfRecordLabelMapFilePath,
		"The TFRecord label map file `path`")
	flag.IntVar(&numShardFiles, "num-shards", 1,
		"The number of shard files to create (tfrecord only)")
	flag.Float64Var(&minConfidence, "min-confidence", minConfidence,
		"The minimum confidence to import an instance; range [0, 100] (aws-dl only)")

	// Class arguments.
	flag.StringVar(&classMappings, "map-classes", classMappings,
		"Comma-separated list of old=new class renames")
	flag.BoolVar(&resolveClassIDs, "resolve-class-ids", resolveClassIDs,
		"Re-assign the class id of every box from its class name before exporting")

	// Image arguments.
	flag.BoolVar(&copyImages, "copy-images", copyImages,
		"Copy the images into the output (yolo only)")
	flag.IntVar(&imageMaxSide, "image-max-side", imageMaxSide,
		"Down-scale copied images to this longer side `length` (zero keeps the size)")

	flag.BoolVar(&printStats, "stats", printStats, "Print the project statistics")

	// Parse and validate flags.
	flag.Parse()

	convertFrom = formatFrom(*from)
	convertTo = formatFrom(*to)

	// Validate the conversion direction.
	validInFormat := false
	for _, f := range []format{None, AWSDetectLabels, Kitti, Sloth, VIA} {
		if f == convertFrom {
			validInFormat = true
			break
		}
	}
	if !validInFormat {
		printUsageAndExit("Unsupported input format")
	} else if convertTo == Unknown {
		printUsageAndExit("Unsupported output format")
	}
	if convertFrom == None && convertTo == None && !printStats {
		printUsageAndExit("Nothing to do")
	}
	if convertFrom == None && projectFilePath == "" {
		printUsageAndExit("Missing project or label input argument")
	}

	// Validate input arguments.
	if convertFrom != None && (labelFileOrDirPath == "" ||
			((convertFrom == Kitti || convertFrom == AWSDetectLabels) && imageDirPath == "")) {
		printUsageAndExit("Missing label or image input path argument")
	}
	if minConfidence < 0 || minConfidence > 100 {
		printUsageAndExit("Invalid -min-confidence, must be in [0, 100]: ", minConfidence)
	}

	// Validate output split arguments.
	if convertTo != None {
		outFileOrDirPaths = strings.Split(*outPaths, ",")
		splitValues := strings.Split(*splits, ",")
		if *outPaths == "" {
			printUsageAndExit("Missing output path argument")
		}
		if len(splitValues) != len(outFileOrDirPaths) {
			printUsageAndExit("The number of output datasets defined by -split and the number of" +
					" paths in -out must match")
		}

		// Parse splits as cumulative int percentages.
		var splitSum int
		for _, v := range splitValues {
			if i, err := strconv.Atoi(v); err != nil || i < 0 || i > 100 {
				printUsageAndExit("Invalid value in -split: ", v)
			} else {
				splitSum += i
				outSplits = append(outSplits, splitSum)
			}
		}
		if splitSum != 100 {
			printUsageAndExit("The values in -split must add up to 100%")
		}
	}

	// Validate other output arguments.
	if convertTo == TFRecord && tfRecordLabelMapFilePath == "" {
		printUsageAndExit("Missing label map output path argument")
	}
	if imageMaxSide < 0 {
		printUsageAndExit("Invalid value for -image-max-side")
	}

	// Clean path arguments.
	if imageDirPath != "" {
		imageDirPath = filepath.Clean(imageDirPath)
	}
	if labelFileOrDirPath != "" {
		labelFileOrDirPath = filepath.Clean(labelFileOrDirPath)
	}
	for i, v := range outFileOrDirPaths {
		outFileOrDirPaths[i] = filepath.Clean(v)
		if labelFileOrDirPath != "" && labelFileOrDirPath == outFileOrDirPaths[i] {
			printUsageAndExit("The label input and output paths cannot be identical")
		}
	}
	if tfRecordLabelMapFilePath != "" {
		tfRecordLabelMapFilePath = filepath.Clean(tfRecordLabelMapFilePath)
	}
}

func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	// Load the settings.
	cfg := bboxlabel.DefaultConfig()
	if configFilePath != "" {
		var err error
		if cfg, err = bboxlabel.LoadConfig(configFilePath); err != nil {
			log.Fatal("Failed to load the config: ", err)
		}
	}
	if copyImages {
		cfg.Export.CopyImages = true
	}
	if imageMaxSide > 0 {
		cfg.Export.ImageMaxSide = imageMaxSide
	}

	// Load the project. A missing or broken file yields an empty project.
	store := bboxlabel.NewStore(cfg.Store, logger)
	var p *bboxlabel.Project
	if projectFilePath != "" {
		p, _ = store.Load(projectFilePath)
	} else {
		p = store.CreateDefault()
	}

	// Parse input.
	importer := bboxlabel.NewImporter(logger)
	var err error
	switch convertFrom {
	case AWSDetectLabels:
		err = importer.ImportAWSDetectLabels(p, labelFileOrDirPath, imageDirPath, minConfidence)
	case Kitti:
		err = importer.ImportKitti(p, labelFileOrDirPath, imageDirPath)
	case Sloth:
		err = importer.ImportSloth(p, labelFileOrDirPath)
	case VIA:
		err = importer.ImportVIA(p, labelFileOrDirPath)
	}
	if err != nil {
		log.Fatal("Failed to parse the input: ", err)
	}

	// Map classes.
	if classMappings != "" {
		if err := mapClasses(p, strings.Split(classMappings, ",")); err != nil {
			log.Fatal("Failed to map classes: ", err)
		}
	}
	if resolveClassIDs {
		n, err := p.ResolveClassIDs()
		if err != nil {
			log.Print("Warning: ", err)
		}
		log.Printf("Resolving class ids changed %d boxes", n)
	}

	// Save the import into the project file.
	if convertFrom != None && projectFilePath != "" {
		if err := store.Save(p, projectFilePath); err != nil {
			log.Fatal(err)
		}
	}

	if printStats {
		writeStats(p)
	}
	if convertTo == None {
		return
	}

	// Split data into output datasets.
	var datasets []*bboxlabel.Project
	if len(outSplits) == 1 {
		datasets = []*bboxlabel.Project{p}
	} else {
		if datasets, err = p.Split(outSplits, nil); err != nil {
			log.Fatal("Failed to split the dataset: ", err)
		}
	}

	// Write output datasets concurrently, each from its own snapshot.
	exporter := bboxlabel.NewExporter(cfg.Export, logger)
	results := make([]<-chan error, len(datasets))
	for i, data := range datasets {
		results[i] = exporter.Background(data, exportFn(exporter, store, outFileOrDirPaths[i]))
	}
	failed := false
	for i, result := range results {
		if err := <-result; err != nil {
			log.Print("Conversion failed: ", err)
			failed = true
			continue
		}
		log.Printf("Successfully wrote %d images to %s", len(datasets[i].Annotations),
			outFileOrDirPaths[i])
	}
	if failed {
		os.Exit(1)
	}

	log.Print("Total number of images: ", len(p.Annotations))
}

// exportFn returns the export of a snapshot in the target format to outPath.
func exportFn(e *bboxlabel.Exporter, store *bboxlabel.Store,
		outPath string) func(*bboxlabel.Project) error {

	return func(p *bboxlabel.Project) error {
		switch convertTo {
		case Coco:
			return e.ExportCoco(p, outPath)
		case DatasetJSON:
			return e.ExportDatasetJSON(p, outPath)
		case Kitti:
			return e.ExportKitti(p, outPath)
		case ProjectJSON:
			return store.Save(p, outPath)
		case Sloth:
			return e.ExportSloth(p, outPath)
		case TFRecord:
			return e.ExportTFRecord(p, outPath, tfRecordLabelMapFilePath, numShardFiles)
		case VIA:
			return e.ExportVIA(p, outPath)
		case Yolo:
			return e.ExportYolo(p, outPath)
		}
		return fmt.Errorf("unsupported output format")
	}
}

// mapClasses applies old=new class renames, in order.
func mapClasses(p *bboxlabel.Project, mappings []string) error {
	for _, v := range mappings {
		a := strings.Split(v, "=")
		if len(a) != 2 {
			return fmt.Errorf("invalid mapping: %v", v)
		}
		if err := p.RenameClass(a[0], a[1]); err != nil {
			return err
		}
	}
	log.Printf("Applied %d class mappings", len(mappings))
	return nil
}

// writeStats prints the project statistics to stdout.
func writeStats(p *bboxlabel.Project) {
	s := p.Stats(-1)
	fmt.Printf("Project:          %s\n", p.Name)
	fmt.Printf("Images:           %d\n", s.CheckedImages)
	fmt.Printf("Annotated images: %d (%.1f%%)\n", s.AnnotatedImages, 100*s.Progress())
	fmt.Printf("Boxes:            %d (%d defects)\n", s.Boxes, s.DefectBoxes)
	for id, n := range s.ClassBoxes {
		fmt.Printf("  %3d %-24s %d\n", id, p.Classes[id], n)
	}
}
